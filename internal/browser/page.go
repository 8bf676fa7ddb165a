package browser

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Browser errors.
var (
	// ErrNavigation is returned when the page could not be loaded at all.
	ErrNavigation = errors.New("navigation failed")

	// ErrElementNotFound is returned by Click when no element matches.
	ErrElementNotFound = errors.New("element not found")

	// ErrPageClosed is returned by any method called after Close.
	ErrPageClosed = errors.New("page is closed")

	// ErrUnknownDriver is returned by the launcher for an unknown driver name.
	ErrUnknownDriver = errors.New("unknown browser driver")

	// ErrInvalidProxy is returned when the proxy URL cannot be used.
	ErrInvalidProxy = errors.New("invalid proxy URL")
)

// Page is one browser tab used for the whole of one scan.
type Page interface {
	// Navigate loads url and waits for the document.
	Navigate(ctx context.Context, url string) (*Response, error)

	// URL returns the current document URL after redirects.
	URL() string

	// HTML returns the current DOM serialized as HTML.
	HTML(ctx context.Context) (string, error)

	// Query returns all elements matching a CSS selector. An invalid or
	// unsupported selector yields no elements.
	Query(ctx context.Context, selector string) ([]Element, error)

	// Click clicks the first visible element matching selector.
	Click(ctx context.Context, selector string) error

	// Cookies returns every cookie currently in the jar.
	Cookies(ctx context.Context) ([]Cookie, error)

	// Viewport returns the size of the layout viewport.
	Viewport() Size

	// OnRequest registers a callback for every network request the page
	// makes. Callbacks may run on another goroutine and must not block.
	OnRequest(fn func(Request))

	// Close releases the page.
	Close() error
}

// Response is the main document response of a navigation.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
}

// ResourceType classifies a network request.
type ResourceType string

// Resource types.
const (
	ResourceDocument   ResourceType = "document"
	ResourceScript     ResourceType = "script"
	ResourceStylesheet ResourceType = "stylesheet"
	ResourceImage      ResourceType = "image"
	ResourceMedia      ResourceType = "media"
	ResourceFont       ResourceType = "font"
	ResourceXHR        ResourceType = "xhr"
	ResourceFetch      ResourceType = "fetch"
	ResourceOther      ResourceType = "other"
)

// ParseResourceType maps a driver specific type name to a ResourceType.
func ParseResourceType(s string) ResourceType {
	switch t := ResourceType(strings.ToLower(s)); t {
	case ResourceDocument, ResourceScript, ResourceStylesheet, ResourceImage,
		ResourceMedia, ResourceFont, ResourceXHR, ResourceFetch:
		return t
	default:
		return ResourceOther
	}
}

// Request is one network request observed by the page.
type Request struct {
	URL          string
	ResourceType ResourceType
}

// Size is a viewport size in CSS pixels.
type Size struct {
	Width  int
	Height int
}

// Area returns the viewport area.
func (s Size) Area() float64 {
	return float64(s.Width) * float64(s.Height)
}

// Rect is an element bounding box in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Area returns the box area. Negative sizes count as zero.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Element is a snapshot of one DOM element.
type Element struct {
	Tag     string
	Text    string
	Attrs   map[string]string
	Visible bool
	Box     Rect
	Checked bool

	// Label is the accessible name: the associated <label> text for form
	// controls, otherwise aria-label or title.
	Label string
}

// Attr returns the value of an attribute, or "".
func (e Element) Attr(name string) string {
	return e.Attrs[strings.ToLower(name)]
}

// Cookie is a browser cookie with its attributes.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  *time.Time
	HTTPOnly bool
	Secure   bool
	SameSite string
}

// Key returns the cookie identity.
func (c Cookie) Key() string {
	return c.Name + "|" + c.Domain + "|" + c.Path
}
