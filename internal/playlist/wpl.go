package playlist

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// WPL structure based on the Windows Media Player playlist format.
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Title string    `xml:"title"`
	Meta  []WPLMeta `xml:"meta"`
}

type WPLMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// WriteWPL writes the given entries of the playlist as a WPL document.
// Entries with no resolvable filename are skipped.
func (p *Playlist) WriteWPL(w io.Writer, title string, entries []int) error {
	wpl := WPL{
		Head: WPLHead{
			Title: title,
			Meta: []WPLMeta{
				{Name: "Generator", Content: "filetree-search"},
				{Name: "ItemCount", Content: strconv.Itoa(len(entries))},
			},
		},
	}

	for _, e := range entries {
		path := p.Filename(e)
		if path == "" {
			continue
		}
		wpl.Body.Seq.Media = append(wpl.Body.Seq.Media, WPLMedia{Src: path})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write WPL header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(wpl); err != nil {
		return fmt.Errorf("failed to encode WPL: %w", err)
	}
	return enc.Close()
}
