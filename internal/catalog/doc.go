// package catalog maintains a TTL-governed snapshot of the full album
// catalog and answers release-date anniversary queries against it.
package catalog
