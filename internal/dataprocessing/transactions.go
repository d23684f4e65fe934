package dataprocessing

import (
	"strconv"

	"demandprep/pkg/contracts/domain"
)

// TransactionsTable renders cleaned transactions in output column order
func TransactionsTable(records []domain.TransactionRecord) *domain.Table {
	table := domain.NewTable(TableTransactions, domain.TransactionColumns)
	for _, rec := range records {
		price := ""
		if rec.HasPrice() {
			price = formatFloat(*rec.BasePrice)
		}
		// row width always matches TransactionColumns
		_ = table.AppendRow([]string{
			rec.WeekEndDate.Format(DateLayout),
			strconv.FormatInt(rec.StoreID, 10),
			strconv.FormatInt(rec.ProductID, 10),
			price,
			formatFlag(rec.OnDisplay),
			formatFlag(rec.OnFeature),
			strconv.FormatInt(rec.Units, 10),
		})
	}
	return table
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
