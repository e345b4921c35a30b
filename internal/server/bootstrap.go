package server

import (
	"go.uber.org/zap"

	"github.com/settledb/settle-db/internal/executor"
	"github.com/settledb/settle-db/internal/storage"
)

// sampleTables is the payment-settlement starter schema created on first
// boot.
var sampleTables = map[string]string{
	"merchants": `CREATE TABLE merchants (
		id INT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE,
		account_number VARCHAR(50),
		status VARCHAR(20)
	)`,
	"transactions": `CREATE TABLE transactions (
		id INT PRIMARY KEY,
		merchant_id INT NOT NULL,
		amount DECIMAL NOT NULL,
		currency VARCHAR(10),
		status VARCHAR(20),
		transaction_date DATETIME
	)`,
	"settlements": `CREATE TABLE settlements (
		id INT PRIMARY KEY,
		merchant_id INT NOT NULL,
		total_amount DECIMAL NOT NULL,
		status VARCHAR(20),
		settlement_date DATETIME
	)`,
}

// EnsureSampleTables creates any sample table that does not exist yet.
func EnsureSampleTables(exec *executor.Executor, store *storage.Store, log *zap.SugaredLogger) {
	for name, ddl := range sampleTables {
		if store.TableExists(name) {
			continue
		}
		if res := exec.Execute(ddl); res.Success {
			log.Infow("created sample table", "table", name)
		} else {
			log.Warnw("failed to create sample table", "table", name, "message", res.Message)
		}
	}
}
