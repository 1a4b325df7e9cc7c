package correlation

import "strings"

// Edge ties the traded instrument to a peer whose recent movement carries
// information about it. Correlation is in [-1, 1]; Weight is the edge's
// importance in the aggregate.
type Edge struct {
	Symbol      string
	Correlation float64
	Weight      float64
}

// EdgesFor returns the default correlation table for a symbol. The tables
// encode well-known cross-market relationships (dollar pairs vs. metals,
// oil vs. CAD, index co-movement) and are the starting point; callers may
// substitute their own edges.
func EdgesFor(symbol string) []Edge {
	name := strings.ToUpper(symbol)

	switch {
	case strings.Contains(name, "XAU") || strings.Contains(name, "GOLD"):
		return []Edge{
			{"EURUSD", 0.80, 1.0},
			{"USDJPY", -0.70, 0.8},
			{"GBPUSD", 0.75, 0.7},
			{"USDCHF", -0.85, 0.9},
			{"XAGUSD", 0.90, 0.6},
		}
	case strings.Contains(name, "XAG") || strings.Contains(name, "SILVER"):
		return []Edge{
			{"XAUUSD", 0.90, 1.0},
			{"EURUSD", 0.75, 0.8},
			{"USDCHF", -0.80, 0.7},
		}
	case strings.Contains(name, "OIL") || strings.Contains(name, "XTI") ||
		strings.Contains(name, "WTI") || strings.Contains(name, "BRENT"):
		return []Edge{
			{"USDCAD", -0.75, 1.0},
			{"CADJPY", 0.70, 0.8},
			{"USDRUB", -0.60, 0.5},
		}
	case strings.HasPrefix(name, "EUR"):
		switch {
		case strings.Contains(name, "USD"):
			return []Edge{
				{"GBPUSD", 0.90, 1.0},
				{"AUDUSD", 0.70, 0.7},
				{"USDCHF", -0.95, 0.9},
				{"USDJPY", -0.50, 0.5},
			}
		case strings.Contains(name, "GBP"):
			return []Edge{
				{"EURUSD", 0.60, 0.8},
				{"GBPUSD", -0.65, 0.8},
			}
		case strings.Contains(name, "JPY"):
			return []Edge{
				{"USDJPY", 0.80, 0.9},
				{"GBPJPY", 0.85, 0.8},
			}
		}
		return nil
	case strings.HasPrefix(name, "GBP"):
		switch {
		case strings.Contains(name, "USD"):
			return []Edge{
				{"EURUSD", 0.90, 1.0},
				{"AUDUSD", 0.65, 0.6},
				{"USDCHF", -0.85, 0.8},
			}
		case strings.Contains(name, "JPY"):
			return []Edge{
				{"USDJPY", 0.75, 0.9},
				{"EURJPY", 0.90, 0.8},
			}
		}
		return nil
	case strings.HasPrefix(name, "USD"):
		switch {
		case strings.Contains(name, "JPY"):
			return []Edge{
				{"EURJPY", 0.80, 0.8},
				{"GBPJPY", 0.75, 0.7},
				{"EURUSD", -0.50, 0.5},
			}
		case strings.Contains(name, "CHF"):
			return []Edge{
				{"EURUSD", -0.95, 1.0},
				{"GBPUSD", -0.85, 0.8},
			}
		case strings.Contains(name, "CAD"):
			return []Edge{
				{"XTIUSD", -0.75, 0.9},
				{"AUDUSD", -0.60, 0.6},
			}
		}
		return []Edge{{"EURUSD", -0.70, 0.7}}
	case strings.HasPrefix(name, "AUD") || strings.HasPrefix(name, "NZD"):
		audCorr, nzdCorr := 1.0, 1.0
		if strings.Contains(name, "NZD") {
			audCorr = 0.85
		}
		if strings.Contains(name, "AUD") {
			nzdCorr = 0.85
		}
		return []Edge{
			{"AUDUSD", audCorr, 0.9},
			{"NZDUSD", nzdCorr, 0.9},
			{"XAUUSD", 0.55, 0.5},
		}
	case strings.Contains(name, "US30") || strings.Contains(name, "DJ30") || strings.Contains(name, "DOW"):
		return []Edge{
			{"US100", 0.95, 1.0},
			{"US500", 0.97, 0.9},
			{"DE40", 0.80, 0.6},
			{"USDJPY", 0.50, 0.4},
		}
	case strings.Contains(name, "US100") || strings.Contains(name, "NAS") || strings.Contains(name, "NDX"):
		return []Edge{
			{"US30", 0.95, 1.0},
			{"US500", 0.96, 0.9},
			{"BTCUSD", 0.60, 0.5},
		}
	case strings.Contains(name, "US500") || strings.Contains(name, "SPX") || strings.Contains(name, "SP500"):
		return []Edge{
			{"US30", 0.97, 1.0},
			{"US100", 0.96, 0.9},
		}
	case strings.Contains(name, "DE40") || strings.Contains(name, "DAX") || strings.Contains(name, "GER"):
		return []Edge{
			{"FR40", 0.95, 1.0},
			{"UK100", 0.85, 0.8},
			{"US500", 0.80, 0.7},
			{"EURUSD", -0.40, 0.4},
		}
	case strings.Contains(name, "UK100") || strings.Contains(name, "FTSE"):
		return []Edge{
			{"DE40", 0.85, 1.0},
			{"GBPUSD", -0.50, 0.6},
		}
	case strings.Contains(name, "BTC"):
		return []Edge{
			{"ETHUSD", 0.90, 1.0},
			{"US100", 0.60, 0.5},
		}
	case strings.Contains(name, "ETH"):
		return []Edge{
			{"BTCUSD", 0.90, 1.0},
		}
	case strings.Contains(name, "USD"):
		return []Edge{{"EURUSD", 0.70, 0.7}}
	}
	return nil
}
