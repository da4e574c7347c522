package memstore

import (
	"testing"

	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/storetest"
)

func TestBackend(t *testing.T) {
	storetest.Run(t, func(*testing.T) *repository.Backend { return New() })
}
