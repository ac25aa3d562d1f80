package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/page"
)

// DefaultDatastarURL is the client bundle loaded by every page.
const DefaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// PageInfo describes a routable page.
type PageInfo struct {
	Name  string
	Title string
	Path  string
	Label string
}

// Pages lists the pages of the site in menu order.
var Pages = []PageInfo{
	{Name: "index", Title: "Home", Path: "/", Label: "Home"},
	{Name: "offerte", Title: "Offerte", Path: "/offerte", Label: "Offerte"},
	{Name: "contact", Title: "Contact", Path: "/contact", Label: "Contact"},
}

// LookupPage returns the page with the given name.
func LookupPage(name string) (PageInfo, bool) {
	for _, p := range Pages {
		if p.Name == name {
			return p, true
		}
	}
	return PageInfo{}, false
}

// NavLink is one menu entry.
type NavLink struct {
	Href   string
	Label  string
	Active bool
}

// IsActive reports whether a menu link points at the current path.
// The home link also matches /index.html.
func IsActive(href, currentPath string) bool {
	if href == currentPath {
		return true
	}
	return href == "/" && (currentPath == "/" || currentPath == "/index.html")
}

// Nav builds the menu for currentPath.
func Nav(currentPath string) []NavLink {
	links := make([]NavLink, 0, len(Pages))
	for _, p := range Pages {
		links = append(links, NavLink{Href: p.Path, Label: p.Label, Active: IsActive(p.Path, currentPath)})
	}
	return links
}

// FormView is the render model of a bound form.
type FormView struct {
	ID        string
	Title     string
	SubmitURL string
	Fields    []*forms.Field
	Button    *forms.SubmitButton
}

// PageData is the render model of a full page.
type PageData struct {
	Title            string
	Lang             string
	PageID           string
	StreamURL        string
	DatastarURL      string
	Signals          string
	Nav              []NavLink
	Forms            []FormView
	ShowCookieBanner bool
	Year             int
}

// NewPageData builds the render model of a freshly opened session.
func NewPageData(s *page.Session, info PageInfo, currentPath string, showCookieBanner bool) (PageData, error) {
	data := PageData{
		Title:            info.Title,
		Lang:             s.Lang,
		PageID:           s.ID,
		StreamURL:        fmt.Sprintf("/pages/%s/stream", s.ID),
		DatastarURL:      DefaultDatastarURL,
		Nav:              Nav(currentPath),
		ShowCookieBanner: showCookieBanner,
		Year:             time.Now().Year(),
	}

	formSignals := make(map[string]any)
	for _, c := range s.Forms() {
		view := FormView{
			ID:        c.ID(),
			Title:     c.Definition().Title,
			SubmitURL: fmt.Sprintf("/pages/%s/forms/%s/submit", s.ID, c.ID()),
			Button:    c.Button(),
		}
		values := make(map[string]any)
		fields := c.Fields()
		for i := range fields {
			f := &fields[i]
			view.Fields = append(view.Fields, f)
			if f.Def.Kind == forms.KindCheckbox {
				values[string(f.Key())] = f.Checked
			} else {
				values[string(f.Key())] = f.Value
			}
		}
		formSignals[c.ID()] = values
		data.Forms = append(data.Forms, view)
	}

	signals, err := json.Marshal(map[string]any{
		"navOpen": false,
		"forms":   formSignals,
	})
	if err != nil {
		return PageData{}, fmt.Errorf("failed to encode page signals: %w", err)
	}
	data.Signals = string(signals)

	return data, nil
}
