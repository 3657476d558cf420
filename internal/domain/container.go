package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContainerSummary captures the customs cost breakdown for one shipping
// container. The duty figures are derived sequentially from the assessable
// value: basic customs duty on the assessable value, social welfare
// surcharge on the duty, IGST on the running subtotal.
type ContainerSummary struct {
	ID              string
	Code            string
	Description     string
	AssessableValue decimal.Decimal
	BCDRate         decimal.Decimal // percent
	SWSRate         decimal.Decimal // percent, applied to BCD
	IGSTRate        decimal.Decimal // percent, applied to value+BCD+SWS
	BCD             decimal.Decimal
	SWS             decimal.Decimal
	IGST            decimal.Decimal
	TotalDuty       decimal.Decimal
	LandedCost      decimal.Decimal
	CreatedBy       string
	CreatedAt       time.Time
}

var percentBase = decimal.NewFromInt(100)

// ComputeDuty fills in the derived duty fields from the assessable value
// and rates. Amounts are rounded to 2 places at each step, matching how
// customs challans are drawn up.
func (c *ContainerSummary) ComputeDuty() {
	c.BCD = c.AssessableValue.Mul(c.BCDRate).Div(percentBase).Round(2)
	c.SWS = c.BCD.Mul(c.SWSRate).Div(percentBase).Round(2)

	igstBase := c.AssessableValue.Add(c.BCD).Add(c.SWS)
	c.IGST = igstBase.Mul(c.IGSTRate).Div(percentBase).Round(2)

	c.TotalDuty = c.BCD.Add(c.SWS).Add(c.IGST)
	c.LandedCost = c.AssessableValue.Add(c.TotalDuty)
}
