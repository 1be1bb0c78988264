package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/helpdesk-dashboard/internal/model"
)

func expectCards(mock sqlmock.Sqlmock, tickets, customers, resolved, pending int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tickets))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(customers))
	mock.ExpectQuery(regexp.QuoteMeta("AS resolved")).
		WillReturnRows(sqlmock.NewRows([]string{"resolved", "pending"}).AddRow(resolved, pending))
}

func TestDashboardRepoFetchCardData(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	expectCards(mock, 13, 6, 8, 5)

	got, err := NewDashboardRepo(db).FetchCardData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.CardData{
		NumberOfCustomers:    6,
		NumberOfTickets:      13,
		TotalResolvedTickets: 8,
		TotalPendingTickets:  5,
		ResolvedRate:         "0.615",
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepoFetchCardDataNoTickets(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	expectCards(mock, 0, 3, 0, 0)

	got, err := NewDashboardRepo(db).FetchCardData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0", got.ResolvedRate)
	assert.Equal(t, int64(3), got.NumberOfCustomers)
}

func TestDashboardRepoFetchCardDataFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets")).WillReturnError(errors.New("boom"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("AS resolved")).
		WillReturnRows(sqlmock.NewRows([]string{"resolved", "pending"}).AddRow(int64(0), int64(0)))

	got, err := NewDashboardRepo(db).FetchCardData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch card data")
	assert.Equal(t, model.CardData{}, got)
}

func TestDashboardRepoFetchRevenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT month, revenue FROM revenue")).
		WillReturnRows(sqlmock.NewRows([]string{"month", "revenue"}).AddRow("Jan", int64(2000)).AddRow("Feb", int64(1800)))

	got, err := NewDashboardRepo(db).FetchRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Revenue{{Month: "Jan", Revenue: 2000}, {Month: "Feb", Revenue: 1800}}, got)
}
