package handlers

import (
	"net/http"

	"love-letter/internal/content"
)

// contentResponse is everything the landing page renders. Gate answers
// and other secrets never appear here; the gate has its own endpoint.
type contentResponse struct {
	Hero            heroContent         `json:"hero"`
	Relationship    relationshipContent `json:"relationship"`
	Letter          letterContent       `json:"letter"`
	Memories        []memoryContent     `json:"memories"`
	MemoriesVisible bool                `json:"memoriesVisible"`
	TravelVisible   bool                `json:"travelVisible"`
	Highlights      []highlightContent  `json:"highlights"`
	BucketList      sectionHeadings     `json:"bucketList"`
	Songs           sectionHeadings     `json:"songs"`
}

type heroContent struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Intro    string `json:"intro,omitempty"`
	Cta      string `json:"cta,omitempty"`
	CtaAfter string `json:"ctaAfter,omitempty"`
}

type relationshipContent struct {
	StartDate   string   `json:"startDate,omitempty"`
	Heading     string   `json:"heading,omitempty"`
	Subheading  string   `json:"subheading,omitempty"`
	FutureTitle string   `json:"futureTitle,omitempty"`
	FutureText  string   `json:"futureText,omitempty"`
	ShowWheel   bool     `json:"showWheel"`
	WheelItems  []string `json:"wheelItems,omitempty"`
}

type letterContent struct {
	Heading    string   `json:"heading,omitempty"`
	Paragraphs []string `json:"paragraphs"`
}

type memoryContent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type highlightContent struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type sectionHeadings struct {
	Eyebrow    string `json:"eyebrow,omitempty"`
	Heading    string `json:"heading,omitempty"`
	Subheading string `json:"subheading,omitempty"`
}

// GetContent returns the site content for the landing page.
func (h *Handlers) GetContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, newContentResponse(h.content))
}

func newContentResponse(cfg *content.Config) contentResponse {
	memories := make([]memoryContent, 0, len(cfg.Memories))
	for _, m := range cfg.Memories {
		memories = append(memories, memoryContent{
			Title:       m.Title,
			Description: m.Description,
			Date:        m.Date,
			Icon:        m.Icon,
		})
	}

	highlights := make([]highlightContent, 0, len(cfg.Highlights))
	for _, item := range cfg.Highlights {
		highlights = append(highlights, highlightContent{
			Icon:        item.Icon,
			Title:       item.Title,
			Description: item.Description,
		})
	}

	return contentResponse{
		Hero: heroContent{
			Title:    cfg.Hero.Title,
			Subtitle: cfg.Hero.Subtitle,
			Intro:    cfg.Hero.Intro,
			Cta:      cfg.Hero.Cta,
			CtaAfter: cfg.Hero.CtaAfter,
		},
		Relationship: relationshipContent{
			StartDate:   cfg.Relationship.StartDate,
			Heading:     cfg.Relationship.Heading,
			Subheading:  cfg.Relationship.Subheading,
			FutureTitle: cfg.Relationship.FutureTitle,
			FutureText:  cfg.Relationship.FutureText,
			ShowWheel:   cfg.Relationship.ShowWheel,
			WheelItems:  cfg.Relationship.WheelItems,
		},
		Letter: letterContent{
			Heading:    cfg.Letter.Heading,
			Paragraphs: cfg.Letter.Paragraphs,
		},
		Memories:        memories,
		MemoriesVisible: cfg.MemoriesVisible,
		TravelVisible:   cfg.TravelVisible,
		Highlights:      highlights,
		BucketList: sectionHeadings{
			Eyebrow:    cfg.BucketList.Eyebrow,
			Heading:    cfg.BucketList.Heading,
			Subheading: cfg.BucketList.Subheading,
		},
		Songs: sectionHeadings{
			Eyebrow:    cfg.Songs.Eyebrow,
			Heading:    cfg.Songs.Heading,
			Subheading: cfg.Songs.Subheading,
		},
	}
}
