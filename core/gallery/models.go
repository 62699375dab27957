package gallery

import (
	"time"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
)

// Pool capacities. Each pool evicts its oldest items to make room for
// new uploads once full.
const (
	GalleryCap = 8
	EventCap   = 12
)

// PoolCap returns the fixed capacity of the event or regular pool.
func PoolCap(event bool) int {
	if event {
		return EventCap
	}
	return GalleryCap
}

// Item is one photo or video in a pool.
type Item struct {
	ID        string `json:"id"`
	URL       string `json:"photo"`
	StorageID string `json:"-"`
	Title     string `json:"title,omitempty"`
	MediaType string `json:"mediaType"`
	Event     bool   `json:"event"`
	PostedBy  string `json:"postedBy"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Upload pairs a media file with its caption.
type Upload struct {
	File  core.MediaFile
	Title string
}

// PosterRef is the populated subset of the posting account shown on the
// management listing.
type PosterRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Info is an Item with its poster populated.
type Info struct {
	Item
	PostedBy PosterRef `json:"postedBy"`
}

// QueryAllResult splits the two pools for the public listing.
type QueryAllResult struct {
	Events  []Item `json:"eventPhotos"`
	Gallery []Item `json:"galleryPhotos"`
}

// Pool type filters for the management listing.
const (
	TypeAll     = "all"
	TypeEvents  = "events"
	TypeGallery = "gallery"
)

// ManageFilter applies AND operation on available fields.
type ManageFilter struct {
	core.PageQuery
	Type string `query:"type"`
}

func (mf *ManageFilter) Clean() {
	mf.Type = core.CleanString(mf.Type, true /* lower */)
	switch mf.Type {
	case TypeEvents, TypeGallery:
	default:
		mf.Type = TypeAll
	}
	mf.PageQuery.Clean(10)
}

func populate(items []Item, dir map[string]account.Account) []Info {
	infos := make([]Info, 0, len(items))
	for _, it := range items {
		info := Info{Item: it}
		if acct, ok := dir[it.PostedBy]; ok {
			info.PostedBy = PosterRef{ID: acct.ID, Name: acct.Name, Email: acct.Email}
		}
		infos = append(infos, info)
	}
	return infos
}
