package services

import (
	"math"

	"disputeshield_back_end/internal/models"
)

// DisputeStats : indicateurs du tableau de bord
type DisputeStats struct {
	Total         int                          `json:"total"`
	Won           int                          `json:"won"`
	Lost          int                          `json:"lost"`
	Open          int                          `json:"open"`
	ByStatus      map[models.DisputeStatus]int `json:"by_status"`
	AmountAtStake float64                      `json:"amount_at_stake"`
	AmountWon     float64                      `json:"amount_won"`
	WinRate       int                          `json:"win_rate"`
}

// WinRate = round(100 * gagnés / total), 0 pour un ensemble vide
func WinRate(disputes []models.Dispute) int {
	if len(disputes) == 0 {
		return 0
	}
	won := 0
	for _, d := range disputes {
		if d.Status == models.DisputeStatusWon {
			won++
		}
	}
	return int(math.Round(100 * float64(won) / float64(len(disputes))))
}

// ComputeStats agrège les litiges d'un utilisateur. Les montants sont additionnés
// tels quels, sans conversion de devise.
func ComputeStats(disputes []models.Dispute) DisputeStats {
	stats := DisputeStats{
		Total:    len(disputes),
		ByStatus: make(map[models.DisputeStatus]int),
		WinRate:  WinRate(disputes),
	}
	for _, d := range disputes {
		stats.ByStatus[d.Status]++
		switch d.Status {
		case models.DisputeStatusWon:
			stats.Won++
			stats.AmountWon += d.Amount
		case models.DisputeStatusLost:
			stats.Lost++
		default:
			stats.Open++
			stats.AmountAtStake += d.Amount
		}
	}
	return stats
}
