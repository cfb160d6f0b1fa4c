package events

import (
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown event")

// Catalog maps an event family to the sub-event names released with it.
type Catalog map[string][]string

// SubEvents returns the sub-event names of an event family.
func (c Catalog) SubEvents(event string) ([]string, error) {
	subs, ok := c[event]
	if !ok || len(subs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return subs, nil
}

// Merge returns a copy of c with the entries of override replacing or extending it.
func (c Catalog) Merge(override map[string][]string) Catalog {
	out := make(Catalog, len(c)+len(override))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// MonthEnd is the pseudo event that selects month-end bars instead of announcements.
const MonthEnd = "Month End"

// DefaultCatalog is the US macro calendar the dashboard ships with.
// Fed Speeches is the only family whose members are not released together.
func DefaultCatalog() Catalog {
	return Catalog{
		"CPI":                   {"Inflation Rate MoM", "Inflation Rate YoY", "Core Inflation Rate MoM", "Core Inflation Rate YoY", "CPI", "CPI s.a"},
		"PPI":                   {"Core PPI MoM", "Core PPI YoY", "PPI MoM", "PPI YoY"},
		"PCE Price Index":       {"Core PCE Prices QoQ", "PCE Prices QoQ", "PCE Price Index MoM", "PCE Price Index YoY", "Core PCE Price Index MoM", "Core PCE Price Index YoY"},
		"Non Farm Payrolls":     {"Non Farm Payrolls", "Unemployment Rate", "Average Hourly Earnings MoM", "Average Weekly Hours", "Government Payrolls", "Manufacturing Payrolls", "Nonfarm Payrolls Private", "Participation Rate"},
		"ISM Manufacturing PMI": {"ISM Manufacturing PMI", "ISM Manufacturing New Orders", "ISM Manufacturing Employment"},
		"ISM Services PMI":      {"ISM Services PMI", "ISM Services New Orders", "ISM Services Employment", "ISM Services Business Activity", "ISM Services Prices"},
		"S&P Global Manufacturing PMI Final": {"S&P Global Manufacturing PMI Final"},
		"S&P Global Services PMI Final":      {"S&P Global Services PMI Final"},
		"Michigan":                   {"Michigan Consumer Sentiment Final", "Michigan Consumer Sentiment Prel"},
		"Jobless Claims":             {"Initial Jobless Claims", "Continuing Jobless Claims", "Jobless Claims 4-week Average"},
		"ADP":                        {"ADP Employment Change"},
		"JOLTs":                      {"JOLTs Job Openings", "JOLTs Job Quits"},
		"Challenger Job Cuts":        {"Challenger Job Cuts"},
		"Fed Interest Rate Decision": {"Fed Interest Rate Decision"},
		"GDP Price Index QoQ Adv":    {"GDP Price Index QoQ Adv", "GDP Growth Rate QoQ Adv"},
		"Retail Sales":               {"Retail Sales MoM", "Retail Sales YoY", "Retail Sales Ex Autos MoM"},
		"Fed Press Conference":       {"Fed Press Conference"},
		"FOMC Minutes":               {"FOMC Minutes"},
		"Fed Speeches": {
			"Fed Goolsbee Speech", "Fed Kashkari Speech", "Fed Waller Speech", "Fed Bostic Speech", "Fed Kugler Speech",
			"Fed Collins Speech", "Fed Bowman Speech", "Fed Barkin Speech", "Fed Barr Speech", "Fed Daly Speech", "Fed Cook Speech",
			"Fed Harker Speech", "Fed Williams Speech", "Fed Mester Speech", "Fed Musalem Speech", "Fed Chair Powell Speech",
			"Fed Jefferson Speech", "Fed Logan Speech", "Fed Schmid Speech", "Fed Hammack Speech",
		},
		"2-Year Note Auction":                 {"2-Year Note Auction"},
		"3-Year Note Auction":                 {"3-Year Note Auction"},
		"5-Year Note Auction":                 {"5-Year Note Auction"},
		"7-Year Note Auction":                 {"7-Year Note Auction"},
		"10-Year Note Auction":                {"10-Year Note Auction"},
		"20-Year Bond Auction":                {"20-Year Bond Auction"},
		"30-Year Bond Auction":                {"30-Year Bond Auction"},
		"NY Empire State Manufacturing Index": {"NY Empire State Manufacturing Index"},
	}
}

// DefaultPercentageEvents are published as fractions and get rescaled by 100 on load.
func DefaultPercentageEvents() []string {
	return []string{
		"Inflation Rate MoM", "Inflation Rate YoY", "Core Inflation Rate MoM", "Core Inflation Rate YoY",
		"Core PPI MoM", "Core PPI YoY", "PPI MoM", "PPI YoY",
		"Core PCE Prices QoQ", "PCE Prices QoQ", "PCE Price Index MoM", "PCE Price Index YoY", "Core PCE Price Index MoM", "Core PCE Price Index YoY",
		"Unemployment Rate", "Average Hourly Earnings MoM", "Participation Rate",
		"Fed Interest Rate Decision",
		"GDP Price Index QoQ Adv", "GDP Growth Rate QoQ Adv",
		"Retail Sales MoM", "Retail Sales YoY", "Retail Sales Ex Autos MoM",
	}
}
