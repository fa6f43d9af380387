package wallet

import "time"

// Default configuration values
const (
	DefaultCurrency             = "BDT"
	DefaultDailyLimit           = 10000
	DefaultMonthlyLimit         = 100000
	DefaultMaxTransactionAmount = 50000
	DefaultPersistAttempts      = 3
)

// MonthLayout formats MonthlyUsage.Month.
const MonthLayout = "2006-01"

// DefaultLocation decides calendar day and month boundaries.
var DefaultLocation = time.UTC
