// Package slides publishes pages to a Google Slides presentation.
package slides

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/slides/v1"
)

// NewPageID returns a fresh slide object id.
func NewPageID() string {
	return uuid.NewString()
}

// PresentationIDFromURL extracts the presentation id from a Slides URL
// like https://docs.google.com/presentation/d/<id>/edit.
func PresentationIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid presentation URL: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "d" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("presentation URL %q does not point to a Google Slides document", rawURL)
}

func pt(magnitude float64) *slides.Dimension {
	return &slides.Dimension{Magnitude: magnitude, Unit: "PT"}
}

func elementProperties(pageID string, w, h, x, y float64) *slides.PageElementProperties {
	return &slides.PageElementProperties{
		PageObjectId: pageID,
		Size: &slides.Size{
			Width:  pt(w),
			Height: pt(h),
		},
		Transform: &slides.AffineTransform{
			ScaleX:     1,
			ScaleY:     1,
			TranslateX: x,
			TranslateY: y,
			Unit:       "PT",
		},
	}
}

// createSlideRequests appends a blank slide with the given object id.
func createSlideRequests(pageID string) []*slides.Request {
	return []*slides.Request{{
		CreateSlide: &slides.CreateSlideRequest{
			ObjectId: pageID,
			SlideLayoutReference: &slides.LayoutReference{
				PredefinedLayout: "BLANK",
			},
		},
	}}
}

// textboxRequests places a text box of w x h points at (x, y).
func textboxRequests(pageID, objectID, text string, w, h, x, y, fontSize float64) []*slides.Request {
	return []*slides.Request{
		{
			CreateShape: &slides.CreateShapeRequest{
				ObjectId:          objectID,
				ShapeType:         "TEXT_BOX",
				ElementProperties: elementProperties(pageID, w, h, x, y),
			},
		},
		{
			InsertText: &slides.InsertTextRequest{
				ObjectId: objectID,
				Text:     text,
			},
		},
		{
			UpdateTextStyle: &slides.UpdateTextStyleRequest{
				ObjectId: objectID,
				Style: &slides.TextStyle{
					FontSize: pt(fontSize),
				},
				TextRange: &slides.Range{Type: "ALL"},
				Fields:    "fontSize",
			},
		},
	}
}

// bulletRequests turns every paragraph of a text box into a bullet.
func bulletRequests(objectID string) []*slides.Request {
	return []*slides.Request{{
		CreateParagraphBullets: &slides.CreateParagraphBulletsRequest{
			ObjectId:     objectID,
			TextRange:    &slides.Range{Type: "ALL"},
			BulletPreset: "BULLET_DISC_CIRCLE_SQUARE",
		},
	}}
}

// imageRequests places an image fetched from url.
func imageRequests(pageID, objectID, imageURL string, w, h, x, y float64) []*slides.Request {
	return []*slides.Request{{
		CreateImage: &slides.CreateImageRequest{
			ObjectId:          objectID,
			Url:               imageURL,
			ElementProperties: elementProperties(pageID, w, h, x, y),
		},
	}}
}
