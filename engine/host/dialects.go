package host

// Dialects the host can open. Each package registers itself with the
// driver registry from init.
import (
	_ "github.com/compozy/modhost/engine/infra/mysql"
	_ "github.com/compozy/modhost/engine/infra/postgres"
	_ "github.com/compozy/modhost/engine/infra/sqlite"
	_ "github.com/compozy/modhost/engine/infra/sqlserver"
)
