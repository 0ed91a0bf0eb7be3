package words

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

const defaultAttempts = 10

var ErrNoWord = errors.New("no playable word found")

// Source is a page that shows one random word.
type Source struct {
	URL      string
	Selector string
	// Accept reports whether a scraped word is worth playing with.
	Accept func(word string) bool
}

// DefaultSources are the random word generators used in production.
var DefaultSources = map[models.Language]Source{
	models.LanguageEnglish: {
		URL:      "https://www.palabrasaleatorias.com/random-words.php",
		Selector: "table tbody tr td div",
		Accept:   acceptLatin,
	},
	models.LanguageFrench: {
		URL:      "https://www.palabrasaleatorias.com/mots-aleatoires.php",
		Selector: "table tbody tr td div",
		Accept:   acceptLatin,
	},
	models.LanguageKorean: {
		URL:      "https://www.generatormix.com/random-korean-words-generator?number=1",
		Selector: "#output h3.text-center",
		Accept:   acceptKorean,
	},
}

func acceptLatin(w string) bool {
	return !strings.Contains(w, " ") && utf8.RuneCountInString(w) >= 3
}

// Words ending in 다 are mostly dictionary forms of verbs.
func acceptKorean(w string) bool {
	return !strings.Contains(w, " ") && !strings.HasSuffix(w, "다")
}

// Scraper supplies secret words by scraping random word generators.
type Scraper struct {
	client   *http.Client
	sources  map[models.Language]Source
	attempts int
}

func NewScraper(client *http.Client, sources map[models.Language]Source) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if sources == nil {
		sources = DefaultSources
	}
	return &Scraper{client: client, sources: sources, attempts: defaultAttempts}
}

// Word returns a lowercased word in lang, retrying a bounded number of
// times when the generator hands out something unplayable.
func (s *Scraper) Word(ctx context.Context, lang models.Language) (string, error) {
	src, ok := s.sources[lang]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownLanguage, lang)
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		word, err := s.fetch(ctx, src)
		if err != nil {
			return "", err
		}
		if src.Accept == nil || src.Accept(word) {
			return strings.ToLower(word), nil
		}
		log.WithFields(log.Fields{"lang": lang, "word": word, "attempt": attempt}).Debug("Rejected scraped word")
	}
	return "", fmt.Errorf("%w after %d attempts", ErrNoWord, s.attempts)
}

func (s *Scraper) fetch(ctx context.Context, src Source) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch word: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch word: unexpected status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("parse word page: %w", err)
	}
	word := strings.TrimSpace(doc.Find(src.Selector).First().Text())
	if word == "" {
		return "", fmt.Errorf("%w: selector %q matched nothing", ErrNoWord, src.Selector)
	}
	return word, nil
}
