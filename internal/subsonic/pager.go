package subsonic

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/shared"
	"golang.org/x/time/rate"
)

const albumListEndpoint = "getAlbumList"

// albumPager is a cursor traversal over a paged album list endpoint.
//
// Pages come back in server order and are never reordered or deduplicated.
// Termination is either normal (empty or missing albumList), optimized
// (earlyStop fired) or a safety stop once the offset exceeds maxOffset,
// which is logged as a warning because it may mean truncated results.
type albumPager struct {
	client    *Client
	logger    *log.Logger
	limiter   *rate.Limiter
	pageSize  int
	maxOffset int

	// earlyStop inspects each full page after it is collected; returning
	// true halts the traversal before the next page is requested.
	earlyStop func(page []Album) bool

	// onPage observes the running album total after each page, for
	// progress logging during long traversals.
	onPage func(total int)
}

// fetch walks the list endpoint of the given type until termination.
//
// A client failure mid-traversal aborts the walk and returns the pages
// collected so far together with the error, so partial results stay visible
// to the caller.
func (p *albumPager) fetch(ctx context.Context, listType string) ([][]Album, error) {
	var pages [][]Album
	total := 0
	offset := 0

	for {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return pages, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
			}
		}

		params := url.Values{}
		params.Set("type", listType)
		params.Set("size", strconv.Itoa(p.pageSize))
		params.Set("offset", strconv.Itoa(offset))

		resp, err := p.client.Call(ctx, albumListEndpoint, params)
		if err != nil {
			return pages, err
		}

		if resp.AlbumList == nil {
			break
		}

		page := resp.AlbumList.Albums
		if len(page) == 0 {
			break
		}

		pages = append(pages, page)
		total += len(page)
		if p.onPage != nil {
			p.onPage(total)
		}

		if p.earlyStop != nil && p.earlyStop(page) {
			p.logger.Debug("early stop after page", "type", listType, "offset", offset, "fetched", total)
			break
		}

		offset += p.pageSize
		if offset > p.maxOffset {
			p.logger.Warn("album list traversal hit safety cap, results may be truncated",
				"type", listType, "offset", offset, "cap", p.maxOffset)
			break
		}
	}

	return pages, nil
}
