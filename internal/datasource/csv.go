// Package datasource loads match history and fixture files and keeps
// them fresh from remote CSV feeds.
package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
}

// Column aliases map feed-specific headers onto canonical names. Headers
// are lowercased before lookup.
var columnAliases = map[string]string{
	"player_1":      "player1",
	"player_2":      "player2",
	"p1":            "player1",
	"p2":            "player2",
	"odds_1":        "odds1",
	"odds_2":        "odds2",
	"odds_p1":       "odds1",
	"odds_p2":       "odds2",
	"tourney_date":  "date",
	"tourney_level": "level",
}

func canonical(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := make(header, len(record))
	for i, col := range record {
		h[canonical(col)] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	var missing []string
	for _, col := range cols {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", models.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func (h header) get(record []string, col string) string {
	idx, ok := h[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// parseOdds parses decimal odds through shopspring to avoid the usual
// float text round-off, then reports them as float64 for the math paths.
func parseOdds(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidOdds, raw)
	}
	f, _ := d.Float64()
	return f, nil
}

// LoadMatches reads a completed-match history CSV. Rows with unparseable
// dates or a winner matching neither player are dropped and counted, not
// fatal; a missing required column fails the whole load.
func LoadMatches(r io.Reader, logger *logrus.Logger) ([]models.Match, error) {
	if logger == nil {
		logger = logrus.New()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	h, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("date", "player1", "player2", "winner", "surface"); err != nil {
		return nil, err
	}

	var matches []models.Match
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		date, err := parseDate(h.get(record, "date"))
		if err != nil {
			dropped++
			continue
		}

		m := models.Match{
			Date:    date,
			Player1: h.get(record, "player1"),
			Player2: h.get(record, "player2"),
			Winner:  h.get(record, "winner"),
			Surface: h.get(record, "surface"),
			Level:   h.get(record, "level"),
		}
		if m.Player1 == "" || m.Player2 == "" {
			dropped++
			continue
		}
		winnerKey := models.PlayerKey(m.Winner)
		if winnerKey != models.PlayerKey(m.Player1) && winnerKey != models.PlayerKey(m.Player2) {
			dropped++
			continue
		}

		matches = append(matches, m)
	}

	if dropped > 0 {
		logger.WithFields(logrus.Fields{
			"loaded":  len(matches),
			"dropped": dropped,
		}).Warn("Dropped unusable history rows")
	}

	return matches, nil
}

// LoadMatchesFile opens and reads a history CSV from disk.
func LoadMatchesFile(path string, logger *logrus.Logger) ([]models.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()
	return LoadMatches(f, logger)
}

// LoadFixtures reads an upcoming-fixture CSV. Fixtures with odds at or
// below 1.0 on either side are dropped here so downstream value math
// never sees an unpayable price.
func LoadFixtures(r io.Reader, logger *logrus.Logger) ([]models.Fixture, error) {
	if logger == nil {
		logger = logrus.New()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	h, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("player1", "player2", "odds1", "odds2"); err != nil {
		return nil, err
	}

	var fixtures []models.Fixture
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		f := models.Fixture{
			Player1: h.get(record, "player1"),
			Player2: h.get(record, "player2"),
			Surface: h.get(record, "surface"),
			Level:   h.get(record, "level"),
		}
		if f.Player1 == "" || f.Player2 == "" {
			dropped++
			continue
		}

		if raw := h.get(record, "date"); raw != "" {
			if date, err := parseDate(raw); err == nil {
				f.Date = date
			}
		}

		if f.OddsP1, err = parseOdds(h.get(record, "odds1")); err != nil {
			dropped++
			continue
		}
		if f.OddsP2, err = parseOdds(h.get(record, "odds2")); err != nil {
			dropped++
			continue
		}
		if !f.HasValidOdds() {
			dropped++
			continue
		}

		fixtures = append(fixtures, f)
	}

	if dropped > 0 {
		logger.WithFields(logrus.Fields{
			"loaded":  len(fixtures),
			"dropped": dropped,
		}).Warn("Dropped unusable fixture rows")
	}

	return fixtures, nil
}

// LoadFixturesFile opens and reads a fixtures CSV from disk.
func LoadFixturesFile(path string, logger *logrus.Logger) ([]models.Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures file: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f, logger)
}
