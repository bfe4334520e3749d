// package ui defines [lipgloss] styles for CLI output
package ui
