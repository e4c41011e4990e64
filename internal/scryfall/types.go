package scryfall

// ImageURIs lists the rendered image variants Scryfall hosts for a card face.
type ImageURIs struct {
	Small      string `json:"small,omitempty"`
	Normal     string `json:"normal,omitempty"`
	Large      string `json:"large,omitempty"`
	PNG        string `json:"png,omitempty"`
	ArtCrop    string `json:"art_crop,omitempty"`
	BorderCrop string `json:"border_crop,omitempty"`
}

// CardFace is one face of a multi-faced card (transform, modal DFC, flip).
type CardFace struct {
	Name      string     `json:"name"`
	TypeLine  string     `json:"type_line,omitempty"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// Card is the subset of the Scryfall card object used for inline results.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ScryfallURI string     `json:"scryfall_uri"`
	TypeLine    string     `json:"type_line,omitempty"`
	SetName     string     `json:"set_name,omitempty"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
	CardFaces   []CardFace `json:"card_faces,omitempty"`
}

// Images returns the card's top-level images, falling back to the first face
// that carries its own images (double-faced cards have none at the top level).
func (c Card) Images() (ImageURIs, bool) {
	if c.ImageURIs != nil {
		return *c.ImageURIs, true
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil {
			return *face.ImageURIs, true
		}
	}
	return ImageURIs{}, false
}

// List is a single page of search results.
type List struct {
	Object     string   `json:"object"`
	TotalCards int      `json:"total_cards"`
	HasMore    bool     `json:"has_more"`
	NextPage   string   `json:"next_page,omitempty"`
	Data       []Card   `json:"data"`
	Warnings   []string `json:"warnings,omitempty"`
}

// errorObject is the body Scryfall returns for every non-2xx response.
type errorObject struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
