// Command tupledb-server wires a storage backend to the gRPC
// transport in rpc/. Its only flags are the backend selection, the
// backend's data file, and the gRPC and metrics listen addresses:
// everything else (codec, service registration,
// reactivity, conflict detection) is fixed by the library packages it
// imports.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/azmodb/tupledb/enginemetrics"
	"github.com/azmodb/tupledb/rpc"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/storage/boltstore"
	"github.com/azmodb/tupledb/storage/memstore"
	"github.com/azmodb/tupledb/storage/sqlitestore"
	"github.com/azmodb/tupledb/tupledb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

func main() {
	var (
		addr       = flag.String("addr", ":9090", "gRPC listen address")
		metricAddr = flag.String("metrics-addr", ":9091", "Prometheus /metrics listen address, empty to disable")
		backend    = flag.String("backend", "mem", "storage backend: mem, bolt, sqlite")
		dataFile   = flag.String("data", "tupledb.db", "backend data file (ignored for the mem backend)")
	)
	flag.Parse()

	back, closeBackend, err := openBackend(*backend, *dataFile)
	if err != nil {
		log.Fatalf("tupledb-server: %v", err)
	}
	defer closeBackend()

	engine := tupledb.New(back)
	metered := enginemetrics.New(engine, enginemetrics.Options{Namespace: "tupledb"})
	defer metered.Close()

	if *metricAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("tupledb-server: metrics listening on %s", *metricAddr)
			if err := http.ListenAndServe(*metricAddr, mux); err != nil {
				log.Printf("tupledb-server: metrics server stopped: %v", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("tupledb-server: listen %s: %v", *addr, err)
	}

	srv := grpc.NewServer()
	srv.RegisterService(&rpc.ServiceDesc, rpc.NewServer(metered))

	log.Printf("tupledb-server: backend=%s listening on %s", *backend, *addr)
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("tupledb-server: serve: %v", err)
	}
}

func openBackend(name, path string) (storage.Backend, func(), error) {
	switch name {
	case "mem":
		return memstore.New(), func() {}, nil
	case "bolt":
		store, err := boltstore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store %s: %w", path, err)
		}
		return store, func() { store.Close() }, nil
	case "sqlite":
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store %s: %w", path, err)
		}
		return store, func() { store.Close() }, nil
	default:
		fmt.Fprintf(os.Stderr, "tupledb-server: unknown backend %q (want mem, bolt, or sqlite)\n", name)
		os.Exit(2)
		return nil, nil, nil
	}
}
