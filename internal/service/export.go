package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// WriteTipsCSV writes the ranked slate in the column order downstream
// sheets expect.
func WriteTipsCSV(w io.Writer, tips []*models.Tip) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"player1", "player2", "surface", "odds_p1", "odds_p2",
		"p1_prob", "p2_prob", "ev_p1", "ev_p2", "pick", "best_ev", "stake_suggest",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write tips header: %w", err)
	}

	for _, tip := range tips {
		record := []string{
			tip.Player1,
			tip.Player2,
			string(tip.Surface),
			formatFloat(tip.OddsP1),
			formatFloat(tip.OddsP2),
			formatFloat(tip.ProbP1),
			formatFloat(tip.ProbP2),
			formatFloat(tip.EVP1),
			formatFloat(tip.EVP2),
			string(tip.Pick),
			formatFloat(tip.BestEV),
			formatFloat(tip.Stake),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write tip row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
