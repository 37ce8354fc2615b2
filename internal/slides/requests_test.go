package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentationIDFromURL(t *testing.T) {
	id, err := PresentationIDFromURL("https://docs.google.com/presentation/d/1aBcD_efG/edit#slide=id.p")
	require.NoError(t, err)
	assert.Equal(t, "1aBcD_efG", id)

	id, err = PresentationIDFromURL("https://docs.google.com/presentation/d/xyz/")
	require.NoError(t, err)
	assert.Equal(t, "xyz", id)
}

func TestPresentationIDFromURLRejectsOthers(t *testing.T) {
	for _, raw := range []string{
		"",
		"https://docs.google.com/presentation/",
		"https://docs.google.com/presentation/d/",
		"not a url ://",
	} {
		_, err := PresentationIDFromURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestCreateSlideRequests(t *testing.T) {
	reqs := createSlideRequests("page-1")
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].CreateSlide)
	assert.Equal(t, "page-1", reqs[0].CreateSlide.ObjectId)
	assert.Equal(t, "BLANK", reqs[0].CreateSlide.SlideLayoutReference.PredefinedLayout)
}

func TestTextboxRequests(t *testing.T) {
	reqs := textboxRequests("page-1", "box-1", "hello", 400, 50, 10, 20, 13)
	require.Len(t, reqs, 3)

	shape := reqs[0].CreateShape
	require.NotNil(t, shape)
	assert.Equal(t, "TEXT_BOX", shape.ShapeType)
	assert.Equal(t, "page-1", shape.ElementProperties.PageObjectId)
	assert.Equal(t, 400.0, shape.ElementProperties.Size.Width.Magnitude)
	assert.Equal(t, 50.0, shape.ElementProperties.Size.Height.Magnitude)
	assert.Equal(t, 10.0, shape.ElementProperties.Transform.TranslateX)
	assert.Equal(t, 20.0, shape.ElementProperties.Transform.TranslateY)
	assert.Equal(t, "PT", shape.ElementProperties.Transform.Unit)

	insert := reqs[1].InsertText
	require.NotNil(t, insert)
	assert.Equal(t, "box-1", insert.ObjectId)
	assert.Equal(t, "hello", insert.Text)

	style := reqs[2].UpdateTextStyle
	require.NotNil(t, style)
	assert.Equal(t, 13.0, style.Style.FontSize.Magnitude)
	assert.Equal(t, "fontSize", style.Fields)
}

func TestBulletRequests(t *testing.T) {
	reqs := bulletRequests("box-1")
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].CreateParagraphBullets)
	assert.Equal(t, "BULLET_DISC_CIRCLE_SQUARE", reqs[0].CreateParagraphBullets.BulletPreset)
	assert.Equal(t, "ALL", reqs[0].CreateParagraphBullets.TextRange.Type)
}

func TestImageRequests(t *testing.T) {
	reqs := imageRequests("page-1", "img-1", "https://example.com/p.jpg", 210, 210, 0, 110)
	require.Len(t, reqs, 1)
	img := reqs[0].CreateImage
	require.NotNil(t, img)
	assert.Equal(t, "https://example.com/p.jpg", img.Url)
	assert.Equal(t, 210.0, img.ElementProperties.Size.Width.Magnitude)
	assert.Equal(t, 110.0, img.ElementProperties.Transform.TranslateY)
}

func TestNewPageIDUnique(t *testing.T) {
	assert.NotEqual(t, NewPageID(), NewPageID())
}
