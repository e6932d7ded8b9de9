package provider

import (
	"os"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/security"
)

// ResolveAPIKey returns key when set, otherwise the value of envVar, then
// of fallbackEnv. Empty names are skipped.
func ResolveAPIKey(key, envVar, fallbackEnv string) string {
	if key != "" {
		return key
	}
	for _, name := range []string{envVar, fallbackEnv} {
		if name == "" {
			continue
		}
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// Publish registers p as the inference service and hands every non-empty
// secret to the log redactor, when one is registered.
func Publish(ctx *core.AppContext, p Provider, secrets ...string) {
	if svc, ok := ctx.Service(security.ServiceName); ok {
		if r, ok := svc.(*security.Redactor); ok {
			for _, s := range secrets {
				r.AddLiteral(s)
			}
		}
	}
	ctx.RegisterService(ServiceName, p)
}
