package renderer

import (
	"github.com/etnz/lotbook"
)

// Sizing is a position size computation ready for rendering.
type Sizing struct {
	Capital      string `json:"capital"`
	RiskPercent  string `json:"riskPercent"`
	RiskAmount   string `json:"riskAmount"`
	Entry        string `json:"entry"`
	Stop         string `json:"stop"`
	LossPerShare string `json:"lossPerShare"`
	Shares       int64  `json:"shares"`
	Investment   string `json:"investment"`
	LossPercent  string `json:"lossPercent"`
	CapitalRatio string `json:"capitalRatio"`
}

// NewSizing builds the rendering struct of a sizing, amounts in currency cur.
func NewSizing(r lotbook.RiskSettings, s lotbook.Sizing, cur string) *Sizing {
	return &Sizing{
		Capital:      formatMoney(r.TotalCapital, cur),
		RiskPercent:  r.RiskPercent.String() + "%",
		RiskAmount:   formatMoney(s.RiskAmount, cur),
		Entry:        formatPrice(s.Entry, cur),
		Stop:         formatPrice(s.Stop, cur),
		LossPerShare: formatPrice(s.LossPerShare, cur),
		Shares:       s.Shares,
		Investment:   formatMoney(s.Investment, cur),
		LossPercent:  s.LossPercent.StringFixed(2) + "%",
		CapitalRatio: s.CapitalRatio.StringFixed(2) + "%",
	}
}
