package models

import "github.com/shopspring/decimal"

// GroupTotal is one row of a grouped report: how many applications fall in
// the group and the sum of their approved amounts.
type GroupTotal struct {
	Name          string          `json:"name"`
	Applications  int64           `json:"applications"`
	ApprovedTotal decimal.Decimal `json:"approvedTotal"`
}
