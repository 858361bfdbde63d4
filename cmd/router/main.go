// Command router runs a single path-vector router speaking the JSON
// protocol described in this project, peering with the neighbors named
// on the command line.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/alyssa18grasso/bgpRouterProject/bgp"
	"github.com/alyssa18grasso/bgpRouterProject/transport"
)

func main() {
	logLevel := flag.String("log-level", "info", "logrus level: debug, info, warn, error")
	flag.Parse()

	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid -log-level")
	}
	log.SetLevel(level)

	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("usage: router <asn> <port-ip-relation>...")
	}
	asn, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		log.WithError(err).Fatal("invalid AS number")
	}

	descriptors := args[1:]
	specs := make([]bgp.NeighborSpec, 0, len(descriptors))
	ports := make(map[string]uint16, len(descriptors))
	for _, d := range descriptors {
		spec, err := bgp.ParseNeighborSpec(d)
		if err != nil {
			log.WithError(err).Fatal("invalid neighbor descriptor")
		}
		specs = append(specs, spec)
		ports[spec.IP] = spec.Port
	}

	router, err := bgp.NewRouter(uint32(asn), specs, log)
	if err != nil {
		log.WithError(err).Fatal("failed to construct router")
	}

	loop, err := transport.New(router, ports, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open neighbor sockets")
	}

	log.WithFields(logrus.Fields{
		"as":        asn,
		"neighbors": len(specs),
	}).Info("router starting")

	loop.Run()
	os.Exit(0)
}
