package core

// Bucket is one time-period slice of aggregated sales and expenses.
type Bucket struct {
	Label    string
	Sales    Money
	Expenses Money
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// LedgerEntry is one row of a party statement: the transaction split into
// debit/credit with the running balance after it.
type LedgerEntry struct {
	Transaction Transaction
	Debit       Money
	Credit      Money
	Balance     Money
}
