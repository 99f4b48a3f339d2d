package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// QuestionType distinguishes the two gate question styles.
type QuestionType string

const (
	QuestionChoice QuestionType = "choice"
	QuestionText   QuestionType = "text"
)

// Config is the full site content: everything the landing page renders,
// the gate questions, and the seed data applied to an empty database.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Hero            HeroSection         `yaml:"hero"`
	Relationship    RelationshipSection `yaml:"relationship"`
	Letter          LetterSection       `yaml:"letter"`
	Gate            GateSection         `yaml:"gate"`
	Memories        []MemoryEntry       `yaml:"memories"`
	MemoriesVisible bool                `yaml:"memoriesVisible"`
	TravelVisible   bool                `yaml:"travelVisible"`
	Highlights      []HighlightItem     `yaml:"highlights"`
	Gallery         []GalleryItem       `yaml:"gallery"`
	BucketList      BucketListSection   `yaml:"bucketList"`
	Songs           SongsSection        `yaml:"songs"`
}

// HeroSection is the landing page hero block.
type HeroSection struct {
	Title         string `yaml:"title"`
	Subtitle      string `yaml:"subtitle"`
	Intro         string `yaml:"intro"`
	Cta           string `yaml:"cta"`
	CtaAfter      string `yaml:"ctaAfter"`
	FeaturedPhoto Photo  `yaml:"featuredPhoto"`
}

// Photo is a root-relative image reference with an optional caption.
type Photo struct {
	Src     string `yaml:"src"`
	Caption string `yaml:"caption"`
}

// RelationshipSection describes the relationship timeline block.
type RelationshipSection struct {
	StartDate   string   `yaml:"startDate"` // YYYY-MM-DD
	Heading     string   `yaml:"heading"`
	Subheading  string   `yaml:"subheading"`
	FutureTitle string   `yaml:"futureTitle"`
	FutureText  string   `yaml:"futureText"`
	ShowWheel   bool     `yaml:"showWheel"`
	WheelItems  []string `yaml:"wheelItems"`
}

// LetterSection is the love letter text.
type LetterSection struct {
	Heading    string   `yaml:"heading"`
	Paragraphs []string `yaml:"paragraphs"`
}

// GateSection configures the landing page gate.
type GateSection struct {
	Title        string         `yaml:"title"`
	Subtitle     string         `yaml:"subtitle"`
	ErrorMessage string         `yaml:"errorMessage"`
	Questions    []GateQuestion `yaml:"questions"`
}

// GateQuestion is one gate challenge. Choice questions carry Choices and
// AnswerIndex; text questions carry AnswerText.
type GateQuestion struct {
	Prompt        string       `yaml:"prompt"`
	Type          QuestionType `yaml:"type"`
	Choices       []string     `yaml:"choices"`
	AnswerIndex   int          `yaml:"answerIndex"`
	AnswerText    string       `yaml:"answerText"`
	CaseSensitive bool         `yaml:"caseSensitive"`
}

// MemoryEntry is one timeline memory.
type MemoryEntry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Icon        string `yaml:"icon"`
}

// HighlightItem is one landing page highlight card.
type HighlightItem struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// GalleryItem seeds one gallery photo on first start.
type GalleryItem struct {
	Src     string `yaml:"src"`
	Caption string `yaml:"caption"`
}

// BucketListSection holds the bucket list headings plus seed items.
type BucketListSection struct {
	Eyebrow    string           `yaml:"eyebrow"`
	Heading    string           `yaml:"heading"`
	Subheading string           `yaml:"subheading"`
	Items      []BucketListItem `yaml:"items"`
}

// BucketListItem seeds one bucket list entry on first start.
type BucketListItem struct {
	Title       string            `yaml:"title"`
	Meta        string            `yaml:"meta"`
	Description string            `yaml:"description"`
	Completed   bool              `yaml:"completed"`
	Media       []BucketListMedia `yaml:"media"`
}

// BucketListMedia seeds pre-existing media for a seeded entry.
type BucketListMedia struct {
	Type    string `yaml:"type"` // "image" or "video"
	Src     string `yaml:"src"`
	Caption string `yaml:"caption"`
}

// SongsSection is the playlist block.
type SongsSection struct {
	Eyebrow    string     `yaml:"eyebrow"`
	Heading    string     `yaml:"heading"`
	Subheading string     `yaml:"subheading"`
	Items      []SongItem `yaml:"items"`
}

// SongItem is one playlist entry, identified by its Spotify track URL.
type SongItem struct {
	URL    string `yaml:"url"`
	Artist string `yaml:"artist"`
}

// Default returns the built-in demo content used when no content file is
// configured. Callers must not mutate the result.
func Default() *Config {
	return &Config{
		Hero: HeroSection{
			Title:    "For You",
			Subtitle: "Our story so far",
			Intro:    "A little corner of the internet that belongs to just the two of us.",
			Cta:      "Read the letter",
			CtaAfter: "Keep reading",
			FeaturedPhoto: Photo{
				Src:     "images/roses.jpg",
				Caption: "Where it all started",
			},
		},
		Relationship: RelationshipSection{
			StartDate:   "2024-02-02",
			Heading:     "How it began",
			Subheading:  "A small story, still being written.",
			FutureTitle: "Next chapter",
			FutureText:  "So many shared plans still ahead.",
			ShowWheel:   true,
			WheelItems:  []string{"First date", "Road trip", "Concert night", "Pizza evening"},
		},
		Letter: LetterSection{
			Heading: "A few words",
			Paragraphs: []string{
				"This is the sample letter shown until you configure your own.",
				"Replace it with the words you actually want to say.",
			},
		},
		Gate: GateSection{
			Title:        "Just for us",
			Subtitle:     "Answer the questions to come in.",
			ErrorMessage: "Not quite. Try again.",
			Questions: []GateQuestion{
				{
					Prompt:      "Where was our first date?",
					Type:        QuestionChoice,
					Choices:     []string{"The park", "The cinema", "That tiny cafe"},
					AnswerIndex: 2,
				},
				{
					Prompt:     "What do I always order?",
					Type:       QuestionText,
					AnswerText: "pizza",
				},
			},
		},
		Memories: []MemoryEntry{
			{Title: "First concert", Description: "Live music and bad singing along.", Date: "February 2024", Icon: "*"},
			{Title: "Pizza evening", Description: "Our soundtrack and a lot of laughing.", Date: "March 2024", Icon: "*"},
			{Title: "Sunset walk", Description: "Along the river until it got dark.", Date: "April 2024", Icon: "*"},
		},
		MemoriesVisible: true,
		TravelVisible:   true,
		Highlights: []HighlightItem{
			{Icon: "*", Title: "Favorite songs", Description: "Listening together, always too loud."},
			{Icon: "*", Title: "Inside jokes", Description: "The ones nobody else understands."},
			{Icon: "*", Title: "Shared plans", Description: "Trips, concerts and everything else."},
		},
		Gallery: nil,
		BucketList: BucketListSection{
			Eyebrow:    "Bucket list",
			Heading:    "What we still want to do",
			Subheading: "Tick things off together.",
			Items:      nil,
		},
		Songs: SongsSection{
			Eyebrow:    "Playlist",
			Heading:    "Our songs",
			Subheading: "The tracks that mean something.",
			Items:      nil,
		},
	}
}

// Load reads the content file at path and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}

	return cfg, nil
}
