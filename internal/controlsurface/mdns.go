package controlsurface

import (
	"context"

	"github.com/brutella/dnssd"
)

// ServiceType is the mDNS/DNS-SD service type advertised for the control
// surface, generalized from src/dns_sd.go's "_kiss-tnc._tcp" to this
// project's own protocol name.
const ServiceType = "_fmrds-ctl._tcp"

// Announce advertises the control surface on the local network via
// mDNS/DNS-SD, mirroring src/dns_sd.go's dns_sd_announce(): build a
// dnssd.Config naming the service and port, register it, and run the
// responder until ctx is cancelled.
func Announce(ctx context.Context, name string, port int) error {
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return err
	}
	responder, err := dnssd.NewResponder()
	if err != nil {
		return err
	}
	if _, err := responder.Add(service); err != nil {
		return err
	}
	return responder.Respond(ctx)
}
