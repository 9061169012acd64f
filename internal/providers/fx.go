package providers

import (
	"github.com/invorahq/invora/internal/providers/email"
	"github.com/invorahq/invora/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
