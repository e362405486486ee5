package flight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hugr-lab/pgext-go/auth"
	"github.com/hugr-lab/pgext-go/callconv"
	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/internal/serialize"
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testCatalog has util.series(start, stop, step), util.inverse(x) which
// fails on zero and the parameterless util.answer().
func testCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	must := func(fn catalog.Function, err error) catalog.Function {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return fn
	}
	series := must(catalog.NewSetReturningFunction(catalog.FunctionDef{
		Name:    "series",
		Params:  []catalog.Param{{Name: "start", Type: oid.Int8Oid}, {Name: "stop", Type: oid.Int8Oid}, {Name: "step", Type: oid.Int8Oid}},
		Returns: []catalog.Column{{Name: "value", Type: oid.Int8Oid}},
		Strict:  true,
		Fn: callconv.Wrap(func(fcinfo *pgsys.FunctionCallInfo) callconv.SetOf[datum.Int64] {
			start := datum.Arg[datum.Int64](fcinfo, 0).UnwrapOr(0)
			stop := datum.Arg[datum.Int64](fcinfo, 1).UnwrapOr(0)
			step := datum.Arg[datum.Int64](fcinfo, 2).UnwrapOr(1)
			return callconv.NewSetOf(callconv.Series(int64(start), int64(stop), int64(step)))
		}),
	}))
	inverse := must(catalog.NewScalarFunction(catalog.FunctionDef{
		Name:    "inverse",
		Params:  []catalog.Param{{Name: "x", Type: oid.Float8Oid}},
		Returns: []catalog.Column{{Type: oid.Float8Oid}},
		Fn: callconv.Wrap(func(fcinfo *pgsys.FunctionCallInfo) callconv.Value[datum.Float8] {
			x := datum.Arg[datum.Float8](fcinfo, 0).UnwrapOr(0)
			if x == 0 {
				pgsys.Ereport(pgsys.ERROR, pgsys.ErrcodeDivisionByZero, "division by zero")
			}
			return callconv.Scalar(1 / x)
		}),
	}))
	answer := must(catalog.NewScalarFunction(catalog.FunctionDef{
		Name:    "answer",
		Returns: []catalog.Column{{Type: oid.Int4Oid}},
		Fn: callconv.Wrap(func(*pgsys.FunctionCallInfo) callconv.Value[datum.Int32] {
			return callconv.Scalar(datum.Int32(42))
		}),
	}))

	cat := catalog.NewStaticCatalog()
	if err := cat.AddSchema("util", "helpers", []catalog.Function{series, inverse, answer}); err != nil {
		t.Fatal(err)
	}
	return cat
}

// startServer serves the test catalog over an in-memory listener with
// batches of two rows.
func startServer(t *testing.T, authenticator auth.Authenticator) flight.FlightServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(authenticator)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(authenticator)),
	)
	RegisterFlightServer(gs, NewServer(testCatalog(t), memory.NewGoAllocator(), testLogger(), "", 2))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return flight.NewFlightServiceClient(conn)
}

func listFlights(t *testing.T, client flight.FlightServiceClient, expression string) []*flight.FlightInfo {
	t.Helper()
	stream, err := client.ListFlights(context.Background(), &flight.Criteria{Expression: []byte(expression)})
	if err != nil {
		t.Fatal(err)
	}
	var infos []*flight.FlightInfo
	for {
		info, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return infos
		}
		if err != nil {
			t.Fatalf("ListFlights: %v", err)
		}
		infos = append(infos, info)
	}
}

func TestListFlights(t *testing.T) {
	client := startServer(t, nil)
	infos := listFlights(t, client, "")
	if len(infos) != 4 {
		t.Fatalf("expected the listing and 3 functions, got %d infos", len(infos))
	}

	listing := infos[0]
	if string(listing.GetFlightDescriptor().GetCmd()) != ListFlightsCommand {
		t.Errorf("first descriptor = %v", listing.GetFlightDescriptor())
	}
	data, err := serialize.DecompressCatalog(listing.GetEndpoint()[0].GetTicket().GetTicket())
	if err != nil {
		t.Fatal(err)
	}
	record, err := serialize.ReadCatalog(data, memory.NewGoAllocator())
	if err != nil {
		t.Fatal(err)
	}
	defer record.Release()
	if record.NumRows() != 3 {
		t.Errorf("listing has %d functions", record.NumRows())
	}

	// Functions come in name order; only answer() gets a ticket.
	wantNames := []string{"answer", "inverse", "series"}
	for i, info := range infos[1:] {
		path := info.GetFlightDescriptor().GetPath()
		if len(path) != 2 || path[0] != "util" || path[1] != wantNames[i] {
			t.Errorf("info %d path = %v", i, path)
		}
		if hasTicket := len(info.GetEndpoint()) > 0; hasTicket != (wantNames[i] == "answer") {
			t.Errorf("%s: endpoints = %v", wantNames[i], info.GetEndpoint())
		}
	}

	if got := listFlights(t, client, "missing"); len(got) != 1 {
		t.Errorf("criteria for a missing schema returned %d infos", len(got))
	}
}

func TestGetFlightInfo(t *testing.T) {
	client := startServer(t, nil)
	ctx := context.Background()

	info, err := client.GetFlightInfo(ctx, &flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{"util", "series"},
	})
	if err != nil {
		t.Fatal(err)
	}
	schema, err := flight.DeserializeSchema(info.GetSchema(), memory.NewGoAllocator())
	if err != nil {
		t.Fatal(err)
	}
	if schema.NumFields() != 1 || schema.Field(0).Name != "value" || !arrow.TypeEqual(schema.Field(0).Type, arrow.PrimitiveTypes.Int64) {
		t.Errorf("schema = %s", schema)
	}
	if len(info.GetEndpoint()) != 0 {
		t.Error("series needs parameters, no endpoint expected")
	}

	cmd, err := EncodeTicket(TicketData{Schema: "util", Function: "series", Params: []any{int64(1), int64(3), int64(1)}})
	if err != nil {
		t.Fatal(err)
	}
	info, err = client.GetFlightInfo(ctx, &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: cmd})
	if err != nil {
		t.Fatal(err)
	}
	if len(info.GetEndpoint()) != 1 {
		t.Fatalf("endpoints = %v", info.GetEndpoint())
	}
	td, err := DecodeTicket(info.GetEndpoint()[0].GetTicket().GetTicket())
	if err != nil || td.Function != "series" || len(td.Params) != 3 {
		t.Errorf("ticket = %+v, err = %v", td, err)
	}

	short, _ := EncodeTicket(TicketData{Schema: "util", Function: "series", Params: []any{int64(1)}})
	tests := []struct {
		name string
		desc *flight.FlightDescriptor
		want codes.Code
	}{
		{"short path", &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{"util"}}, codes.InvalidArgument},
		{"bad command", &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: []byte("series")}, codes.InvalidArgument},
		{"parameter count", &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: short}, codes.InvalidArgument},
		{"unknown schema", &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{"nope", "series"}}, codes.NotFound},
		{"unknown function", &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{"util", "nope"}}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetFlightInfo(ctx, tt.desc)
			if status.Code(err) != tt.want {
				t.Errorf("code = %s, want %s (%v)", status.Code(err), tt.want, err)
			}
		})
	}
}

func doGet(t *testing.T, client flight.FlightServiceClient, ctx context.Context, td TicketData) ([]int64, []arrow.RecordBatch) {
	t.Helper()
	ticket, err := EncodeTicket(td)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := client.DoGet(ctx, &flight.Ticket{Ticket: ticket})
	if err != nil {
		t.Fatal(err)
	}
	rdr, err := flight.NewRecordReader(stream)
	if err != nil {
		t.Fatal(err)
	}
	defer rdr.Release()

	var sizes []int64
	var records []arrow.RecordBatch
	for rdr.Next() {
		rec := rdr.RecordBatch()
		rec.Retain()
		sizes = append(sizes, rec.NumRows())
		records = append(records, rec)
	}
	if err := rdr.Err(); err != nil {
		t.Fatalf("DoGet: %v", err)
	}
	t.Cleanup(func() {
		for _, rec := range records {
			rec.Release()
		}
	})
	return sizes, records
}

func TestDoGetSeries(t *testing.T) {
	client := startServer(t, nil)
	sizes, records := doGet(t, client, context.Background(), TicketData{
		Schema:   "util",
		Function: "series",
		Params:   []any{int64(1), int64(9), int64(2)},
	})

	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("batch sizes = %v", sizes)
	}
	var got []int64
	for _, rec := range records {
		got = append(got, rec.Column(0).(*array.Int64).Int64Values()...)
	}
	want := []int64{1, 3, 5, 7, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values = %v, want %v", got, want)
		}
	}
}

func TestDoGetScalar(t *testing.T) {
	client := startServer(t, nil)
	sizes, records := doGet(t, client, context.Background(), TicketData{Schema: "util", Function: "answer"})
	if len(sizes) != 1 || sizes[0] != 1 {
		t.Fatalf("batch sizes = %v", sizes)
	}
	if v := records[0].Column(0).(*array.Int32).Value(0); v != 42 {
		t.Errorf("answer = %d", v)
	}

	// Strict set-returning functions yield no rows for a NULL argument,
	// and the schema still arrives.
	sizes, _ = doGet(t, client, context.Background(), TicketData{Schema: "util", Function: "series", Params: []any{nil, int64(3), int64(1)}})
	if len(sizes) != 0 {
		t.Errorf("batch sizes = %v", sizes)
	}
}

func TestDoGetErrors(t *testing.T) {
	client := startServer(t, nil)

	tests := []struct {
		name   string
		ticket []byte
		td     TicketData
		want   codes.Code
	}{
		{name: "garbage ticket", ticket: []byte("series"), want: codes.InvalidArgument},
		{name: "unknown function", td: TicketData{Schema: "util", Function: "nope"}, want: codes.NotFound},
		{name: "parameter count", td: TicketData{Schema: "util", Function: "series", Params: []any{int64(1)}}, want: codes.InvalidArgument},
		{name: "parameter type", td: TicketData{Schema: "util", Function: "inverse", Params: []any{"two"}}, want: codes.InvalidArgument},
		{name: "division by zero", td: TicketData{Schema: "util", Function: "inverse", Params: []any{0.0}}, want: codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := tt.ticket
			if ticket == nil {
				var err error
				if ticket, err = EncodeTicket(tt.td); err != nil {
					t.Fatal(err)
				}
			}
			stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: ticket})
			if err != nil {
				t.Fatal(err)
			}
			_, err = stream.Recv()
			if status.Code(err) != tt.want {
				t.Errorf("code = %s, want %s (%v)", status.Code(err), tt.want, err)
			}
		})
	}

	// The engine recovers from the failed call.
	_, records := doGet(t, client, context.Background(), TicketData{Schema: "util", Function: "inverse", Params: []any{4.0}})
	if v := records[0].Column(0).(*array.Float64).Value(0); v != 0.25 {
		t.Errorf("inverse(4) = %v", v)
	}
}

func TestAuthentication(t *testing.T) {
	client := startServer(t, auth.StaticTokens(map[string]string{"secret": "alice"}))
	desc := &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{"util", "answer"}}

	_, err := client.GetFlightInfo(context.Background(), desc)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("no token: code = %s", status.Code(err))
	}

	bad := metadata.AppendToOutgoingContext(context.Background(), HeaderAuthorization, "Bearer wrong")
	_, err = client.GetFlightInfo(bad, desc)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("wrong token: code = %s", status.Code(err))
	}
	stream, err := client.ListFlights(bad, &flight.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Recv(); status.Code(err) != codes.Unauthenticated {
		t.Errorf("wrong token on stream: code = %s", status.Code(err))
	}

	good := metadata.AppendToOutgoingContext(context.Background(), HeaderAuthorization, "Bearer secret")
	if _, err := client.GetFlightInfo(good, desc); err != nil {
		t.Fatalf("valid token: %v", err)
	}
	sizes, _ := doGet(t, client, good, TicketData{Schema: "util", Function: "answer"})
	if len(sizes) != 1 {
		t.Errorf("batch sizes = %v", sizes)
	}
}

func TestEnrichContextMetadata(t *testing.T) {
	md := metadata.Pairs(HeaderAuthorization, "Bearer x", HeaderTraceID, "trace-1", HeaderSessionID, "session-1")
	ctx := EnrichContextMetadata(metadata.NewIncomingContext(context.Background(), md))
	if AuthorizationFromContext(ctx) != "Bearer x" || TraceIDFromContext(ctx) != "trace-1" || SessionIDFromContext(ctx) != "session-1" {
		t.Errorf("meta = %+v", MetaFromContext(ctx))
	}
	if again := EnrichContextMetadata(ctx); MetaFromContext(again) != MetaFromContext(ctx) {
		t.Error("enriching twice replaced the metadata")
	}
	if MetaFromContext(EnrichContextMetadata(context.Background())) != nil {
		t.Error("metadata without an incoming call")
	}
}
