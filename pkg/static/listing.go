package static

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

//go:embed templates/listing.html
var templateFS embed.FS

var listingTemplate = template.Must(template.ParseFS(templateFS, "templates/listing.html"))

type listingEntry struct {
	Name    string
	Href    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

type listingPage struct {
	Path      string
	HasParent bool
	Entries   []listingEntry
}

// writeListing renders entries as an HTML page sorted by name.
// Entries whose metadata cannot be read are skipped.
func writeListing(w http.ResponseWriter, r *http.Request, urlPath string, entries []fs.DirEntry) error {
	page := listingPage{
		Path:      urlPath,
		HasParent: urlPath != "/",
		Entries:   make([]listingEntry, 0, len(entries)),
	}

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := e.Name()
		href := (&url.URL{Path: name}).String()
		if e.IsDir() {
			name += "/"
			href += "/"
		}
		page.Entries = append(page.Entries, listingEntry{
			Name:    name,
			Href:    href,
			IsDir:   e.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(page.Entries, func(i, j int) bool {
		return page.Entries[i].Name < page.Entries[j].Name
	})

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, page); err != nil {
		http.Error(w, "500 internal server error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
	return nil
}
