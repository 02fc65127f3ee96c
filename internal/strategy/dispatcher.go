package strategy

import (
	"context"
	"os"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
)

// Dispatcher maps a selected strategy to its handler and runs it.
type Dispatcher struct {
	env *Env
}

// NewDispatcher creates a dispatcher. Nil Stderr and Log fields get
// os.Stderr and a no-op logger.
func NewDispatcher(env Env) *Dispatcher {
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	env.Log = logger.OrNop(env.Log)
	return &Dispatcher{env: &env}
}

// Handler returns the handler for s.
func (d *Dispatcher) Handler(s Strategy, helper Helper) Handler {
	switch s {
	case ManagedRepo:
		return &managedRepoHandler{env: d.env}
	case AptGet:
		return &packageFileHandler{env: d.env, kind: artifact.KindDeb, manager: platform.ToolAptGet}
	case Dnf:
		return &packageFileHandler{env: d.env, kind: artifact.KindRPM, manager: platform.ToolDnf}
	case PacmanAUR:
		return &aurHandler{env: d.env, helper: helper}
	default:
		return &appImageHandler{env: d.env}
	}
}

// Dispatch selects exactly one strategy from caps and runs it.
func (d *Dispatcher) Dispatch(ctx context.Context, caps platform.Capabilities, req *Request) (Strategy, error) {
	s, helper := Select(caps)
	if s == PacmanAUR && helper != HelperNone {
		d.env.Log.Infof("Installing %s %s with %s via %s", d.env.Product, req.Version(), s, helper)
	} else {
		d.env.Log.Infof("Installing %s %s with %s", d.env.Product, req.Version(), s)
	}
	return s, d.Handler(s, helper).Install(ctx, req)
}
