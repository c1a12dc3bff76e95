package playlist

import (
	"fmt"
	"io"
)

// WriteM3U writes the given entries of the playlist as an extended M3U
// document. Entries with no resolvable filename are skipped.
func (p *Playlist) WriteM3U(w io.Writer, entries []int) error {
	if _, err := io.WriteString(w, "#EXTM3U\n"); err != nil {
		return fmt.Errorf("failed to write M3U header: %w", err)
	}

	for _, e := range entries {
		entry, ok := p.Entry(e)
		if !ok || entry.Path == "" {
			continue
		}

		title := entry.Title
		if entry.Artist != "" {
			title = entry.Artist + " - " + title
		}

		if _, err := fmt.Fprintf(w, "#EXTINF:-1,%s\n%s\n", title, entry.Path); err != nil {
			return fmt.Errorf("failed to write M3U entry: %w", err)
		}
	}

	return nil
}
