package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/storage/memstore"
	"github.com/azmodb/tupledb/tuple"
	"github.com/azmodb/tupledb/tupledb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func scoreKey(name string) tuple.Tuple {
	return tuple.Tuple{tuple.String("score"), tuple.String(name)}
}

func storageWrites(key tuple.Tuple, v tuple.Value) storage.Writes {
	return storage.Writes{Set: []storage.KV{{Key: key, Value: v}}}
}

func dialTestServer(t *testing.T) (*Client, func()) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	srv.RegisterService(&ServiceDesc, NewServer(tupledb.New(memstore.New())))
	go srv.Serve(lis)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName())),
		grpc.WithBlock(),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	return NewClient(conn), func() {
		conn.Close()
		srv.Stop()
	}
}

func TestRPCCommitThenScanRoundTrip(t *testing.T) {
	c, closeAll := dialTestServer(t)
	defer closeAll()
	ctx := context.Background()

	err := c.Commit(ctx, storageWrites(scoreKey("chet"), tuple.Number(5)), 0)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	rows, err := c.Scan(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}}, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 || rows[0].Value.AsNumber() != 5 {
		t.Fatalf("unexpected scan result: %+v", rows)
	}
}

func TestRPCSubscribeReceivesCommit(t *testing.T) {
	c, closeAll := dialTestServer(t)
	defer closeAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notified := make(chan struct{}, 1)
	go c.Subscribe(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}}, func(storage.Writes) {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	// give the stream a moment to register before committing.
	time.Sleep(50 * time.Millisecond)

	if err := c.Commit(ctx, storageWrites(scoreKey("chet"), tuple.Number(5)), 0); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push notification")
	}
}
