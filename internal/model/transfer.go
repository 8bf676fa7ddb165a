package model

// TransferCategory groups third-country services.
type TransferCategory string

// Transfer categories.
const (
	TransferAnalytics   TransferCategory = "analytics"
	TransferAdvertising TransferCategory = "advertising"
	TransferCDN         TransferCategory = "cdn"
	TransferCloud       TransferCategory = "cloud"
	TransferSocial      TransferCategory = "social"
	TransferPayment     TransferCategory = "payment"
)

// TransferService is a third-country service the page sent requests to.
type TransferService struct {
	Name     string           `json:"name"`
	Category TransferCategory `json:"category"`
	Country  string           `json:"country"`
	Domain   string           `json:"domain"`
}

// DataTransferInfo aggregates detected US services.
type DataTransferInfo struct {
	USServices []TransferService `json:"us_services,omitempty"`

	// HighRiskTransfers are the analytics and advertising services.
	HighRiskTransfers []TransferService `json:"high_risk_transfers,omitempty"`

	TotalUSServices int `json:"total_us_services"`
}
