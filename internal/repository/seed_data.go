package repository

// Fixed dataset loaded by Seeder. Customer ids are stable so tickets can
// reference them; ticket ids are generated by the store.

type seedUser struct {
	ID       string
	Name     string
	Email    string
	Password string
}

type seedCustomer struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

type seedTicket struct {
	CustomerID string
	Amount     int64
	Status     string
	Code       string
	CreatedAt  string
}

type seedRevenue struct {
	Month   string
	Revenue int64
}

var seedUsers = []seedUser{
	{
		ID:       "410544b2-4001-4271-9855-fec4b6a6442a",
		Name:     "User",
		Email:    "user@nextmail.com",
		Password: "123456",
	},
}

var seedCustomers = []seedCustomer{
	{ID: "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa", Name: "Evil Rabbit", Email: "evil@rabbit.com", ImageURL: "/customers/evil-rabbit.png"},
	{ID: "3958dc9e-712f-4377-85e9-fec4b6a6442a", Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
	{ID: "3958dc9e-742f-4377-85e9-fec4b6a6442a", Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
	{ID: "76d65c26-f784-44a2-ac19-586678f7c2f2", Name: "Michael Novotny", Email: "michael@novotny.com", ImageURL: "/customers/michael-novotny.png"},
	{ID: "cc27c14a-0acf-4f4a-a6c9-d45682c144b9", Name: "Amy Burns", Email: "amy@burns.com", ImageURL: "/customers/amy-burns.png"},
	{ID: "13d07535-c59e-4157-a011-f8d2ef4e0cbb", Name: "Balazs Orban", Email: "balazs@orban.com", ImageURL: "/customers/balazs-orban.png"},
}

var seedTickets = []seedTicket{
	{CustomerID: seedCustomers[0].ID, Amount: 15795, Status: "pending", Code: "ARB-2", CreatedAt: "2022-12-06"},
	{CustomerID: seedCustomers[1].ID, Amount: 20348, Status: "pending", Code: "CPR-2", CreatedAt: "2022-11-14"},
	{CustomerID: seedCustomers[4].ID, Amount: 3040, Status: "resolved", Code: "CWQ-2", CreatedAt: "2022-10-29"},
	{CustomerID: seedCustomers[3].ID, Amount: 44800, Status: "resolved", Code: "ARB-2", CreatedAt: "2023-09-10"},
	{CustomerID: seedCustomers[5].ID, Amount: 34577, Status: "pending", Code: "CPR-2", CreatedAt: "2023-08-05"},
	{CustomerID: seedCustomers[2].ID, Amount: 54246, Status: "pending", Code: "CWQ-2", CreatedAt: "2023-07-16"},
	{CustomerID: seedCustomers[0].ID, Amount: 666, Status: "pending", Code: "ARB-2", CreatedAt: "2023-06-27"},
	{CustomerID: seedCustomers[3].ID, Amount: 32545, Status: "resolved", Code: "CPR-2", CreatedAt: "2023-06-09"},
	{CustomerID: seedCustomers[4].ID, Amount: 1250, Status: "resolved", Code: "CWQ-2", CreatedAt: "2023-06-17"},
	{CustomerID: seedCustomers[5].ID, Amount: 8546, Status: "resolved", Code: "ARB-2", CreatedAt: "2023-06-07"},
	{CustomerID: seedCustomers[1].ID, Amount: 500, Status: "resolved", Code: "CPR-2", CreatedAt: "2023-08-19"},
	{CustomerID: seedCustomers[5].ID, Amount: 8945, Status: "resolved", Code: "CWQ-2", CreatedAt: "2023-06-03"},
	{CustomerID: seedCustomers[2].ID, Amount: 1000, Status: "resolved", Code: "ARB-2", CreatedAt: "2022-06-05"},
}

var seedRevenues = []seedRevenue{
	{Month: "Jan", Revenue: 2000},
	{Month: "Feb", Revenue: 1800},
	{Month: "Mar", Revenue: 2200},
	{Month: "Apr", Revenue: 2500},
	{Month: "May", Revenue: 2300},
	{Month: "Jun", Revenue: 3200},
	{Month: "Jul", Revenue: 3500},
	{Month: "Aug", Revenue: 3700},
	{Month: "Sep", Revenue: 2500},
	{Month: "Oct", Revenue: 2800},
	{Month: "Nov", Revenue: 3000},
	{Month: "Dec", Revenue: 4800},
}
