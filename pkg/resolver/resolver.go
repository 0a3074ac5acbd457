// Package resolver turns a post link into the direct media links behind it.
package resolver

import (
	"context"
	"path"
	"strings"

	"redditgrab/pkg/client"
	"redditgrab/pkg/deviantart"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/gfycat"
	"redditgrab/pkg/imgrush"
	"redditgrab/pkg/imgur"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/mediatype"
)

// HostVariant names the hosting service a link belongs to
type HostVariant int

const (
	Direct HostVariant = iota
	Imgur
	DeviantArt
	Gfycat
	Mediacrush
	Imgrush
)

func (v HostVariant) String() string {
	switch v {
	case Imgur:
		return "imgur"
	case DeviantArt:
		return "deviantart"
	case Gfycat:
		return "gfycat"
	case Mediacrush:
		return "mediacrush"
	case Imgrush:
		return "imgrush"
	default:
		return "direct"
	}
}

const (
	mediacrushDomain = "mediacru.sh"
	imgrushDomain    = "imgrush.com"
)

// hostRules is checked in order; the first substring found wins
var hostRules = []struct {
	substr  string
	variant HostVariant
}{
	{"imgur.com", Imgur},
	{"deviantart.com", DeviantArt},
	{"gfycat.com", Gfycat},
	{mediacrushDomain, Mediacrush},
	{imgrushDomain, Imgrush},
}

// Classify picks the host variant by substring match on the raw link.
// Links are not parsed so that decorated or malformed ones still match.
func Classify(u string) HostVariant {
	for _, rule := range hostRules {
		if strings.Contains(u, rule.substr) {
			return rule.variant
		}
	}
	return Direct
}

// Media is one downloadable link. Type is guessed from the extension and
// is Unknown when the link has none.
type Media struct {
	URL  string
	Type mediatype.MediaType
}

func newMedia(urls []string) []Media {
	media := make([]Media, 0, len(urls))
	for _, u := range urls {
		media = append(media, Media{URL: u, Type: mediatype.FromExtension(u)})
	}
	return media
}

// URLs returns the links of media in order
func URLs(media []Media) []string {
	urls := make([]string, 0, len(media))
	for _, m := range media {
		urls = append(urls, m.URL)
	}
	return urls
}

// Resolver resolves links using the per-service clients
type Resolver struct {
	pages   *client.Client
	imgur   *imgur.AlbumClient
	gfycat  *gfycat.Client
	imgrush *imgrush.Client
	logger  logger.Logger
}

// New creates a resolver. pages fetches DeviantArt pages.
func New(pages *client.Client, albums *imgur.AlbumClient, gfy *gfycat.Client, rush *imgrush.Client, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		pages:   pages,
		imgur:   albums,
		gfycat:  gfy,
		imgrush: rush,
		logger:  log,
	}
}

// Resolve classifies u and resolves it. An empty result with a nil error
// means the service listed nothing to download.
func (r *Resolver) Resolve(ctx context.Context, u string) ([]Media, error) {
	return r.ResolveVariant(ctx, u, Classify(u))
}

// ResolveVariant resolves u as the given variant. HTTP failures are
// returned as they are; retrying is left to the caller.
func (r *Resolver) ResolveVariant(ctx context.Context, u string, v HostVariant) ([]Media, error) {
	log := r.logger.WithFields(map[string]interface{}{
		"url":     u,
		"variant": v.String(),
	})
	log.Debug("resolving link")

	var (
		urls []string
		err  error
	)
	switch v {
	case Imgur:
		urls, err = r.resolveImgur(ctx, u)
	case DeviantArt:
		urls, err = r.resolveDeviantArt(ctx, u)
	case Gfycat:
		urls, err = r.resolveGfycat(ctx, u)
	case Mediacrush:
		urls, err = r.resolveImgrush(ctx, strings.ReplaceAll(u, mediacrushDomain, imgrushDomain))
	case Imgrush:
		urls, err = r.resolveImgrush(ctx, u)
	default:
		urls = []string{u}
	}
	if err != nil {
		log.WithError(err).Debug("resolution failed")
		return nil, err
	}

	log.DebugWithFields("resolved link", map[string]interface{}{"count": len(urls)})
	return newMedia(urls), nil
}

func (r *Resolver) resolveImgur(ctx context.Context, u string) ([]string, error) {
	if imgur.IsAlbumURL(u) {
		return r.imgur.Extract(ctx, u)
	}
	return []string{imgur.RewriteURL(u)}, nil
}

func (r *Resolver) resolveDeviantArt(ctx context.Context, u string) ([]string, error) {
	if deviantart.IsDirectImage(u) {
		return []string{u}, nil
	}

	page, err := r.pages.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}

	src, found, err := deviantart.ParseImageSource(page)
	if err != nil {
		r.logger.WithError(err).WarnWithFields("falling back to page link", map[string]interface{}{"url": u})
		return []string{u}, nil
	}
	if !found {
		return []string{u}, nil
	}
	return []string{src}, nil
}

func (r *Resolver) resolveGfycat(ctx context.Context, u string) ([]string, error) {
	if user, album, ok := gfycat.ParseAlbumURL(u); ok {
		result, err := r.gfycat.Album(ctx, gfycat.AlbumQuery(user, album))
		if err != nil {
			return nil, err
		}

		var urls []string
		for _, item := range result.Items() {
			if webm, ok := item["webmUrl"].(string); ok && webm != "" {
				urls = append(urls, webm)
			}
		}
		return urls, nil
	}

	result, err := r.gfycat.More(ctx, lastSegment(u))
	if err != nil {
		return nil, err
	}
	webm, ok := result.GetString("webmUrl")
	if !ok || webm == "" {
		return nil, &errs.RemoteError{Service: "gfycat", Message: "response has no webmUrl"}
	}
	return []string{webm}, nil
}

func (r *Resolver) resolveImgrush(ctx context.Context, u string) ([]string, error) {
	info, err := r.imgrush.Info(ctx, lastSegment(u))
	if err != nil {
		return nil, err
	}
	if len(info.Files) == 0 || info.Files[0].URL == "" {
		return nil, &errs.RemoteError{Service: "imgrush", Message: "response has no files"}
	}
	return []string{info.Files[0].URL}, nil
}

// lastSegment returns everything after the final slash
func lastSegment(u string) string {
	_, tail := path.Split(u)
	return tail
}
