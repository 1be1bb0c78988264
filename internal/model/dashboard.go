package model

// Revenue is one month of the revenue chart.
type Revenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

// CardData feeds the summary cards on the dashboard overview.
// ResolvedRate is resolved/total rendered with three decimals, or "0" when
// there are no tickets at all.
type CardData struct {
	NumberOfCustomers    int64
	NumberOfTickets      int64
	TotalResolvedTickets int64
	TotalPendingTickets  int64
	ResolvedRate         string
}
