// Package pgext builds PostgreSQL extensions in Go and serves their
// functions over Apache Arrow Flight.
//
// An extension function is written once against the engine's calling
// convention (see the callconv package) and is then usable two ways:
//   - loaded by the engine from the extension library, declared by the SQL
//     script that cmd/pgext-schema or ExtensionBuilder generates
//   - called remotely through the Flight service registered by NewServer,
//     which runs it in-process and streams the rows as Arrow record batches
//
// # Quick Start
//
//	series := callconv.Wrap(func(fcinfo *pgsys.FunctionCallInfo) callconv.SetOf[datum.Int64] {
//	    stop := datum.Arg[datum.Int64](fcinfo, 0).UnwrapOr(0)
//	    return callconv.NewSetOf(callconv.Series(1, int64(stop), 1))
//	})
//
//	ext, err := pgext.NewExtensionBuilder(sqlgraph.Control{Name: "counting", Version: "0.1"}).
//	    Schema("counting").
//	        SetOf(catalog.FunctionDef{
//	            Name:    "upto",
//	            Params:  []catalog.Param{{Name: "stop", Type: oid.Int8Oid}},
//	            Returns: []catalog.Column{{Name: "n", Type: oid.Int8Oid}},
//	            Strict:  true,
//	            Fn:      series,
//	        }).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("counting--0.1.sql", []byte(ext.Graph.SQL()), 0o644)
//
//	grpcServer := grpc.NewServer()
//	if err := pgext.NewServer(grpcServer, pgext.Config{Catalog: ext.Catalog}); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
//
// # Flight Protocol
//
// ListFlights returns the function listing (Arrow IPC, zstd-compressed)
// followed by one FlightInfo per function. A call is a MessagePack ticket
// naming the schema, the function and its positional parameters; DoGet
// runs it and GetFlightInfo resolves its result schema. Engine errors keep
// their SQLSTATE in the message: data exceptions are InvalidArgument,
// cancellation is Canceled, the rest Internal.
//
// # Server Lifecycle
//
// The package registers Flight service handlers on a user-provided grpc.Server
// but does NOT manage server lifecycle (start/stop/listen). This gives users
// full control over:
//   - TLS configuration via grpc.Creds()
//   - Server options and interceptors
//   - Graceful shutdown via grpcServer.GracefulStop()
//
// # Authentication
//
// Bearer token authentication needs the interceptors of ServerOptions:
//
//	config := pgext.Config{
//	    Catalog: ext.Catalog,
//	    Auth:    pgext.StaticTokens(map[string]string{"secret-api-key": "user1"}),
//	}
//	grpcServer := grpc.NewServer(pgext.ServerOptions(config)...)
//	pgext.NewServer(grpcServer, config)
//
// # Memory Management
//
// Every call runs in a memory context of its own backed by the function's
// Arrow allocator; the context is deleted when the call returns, whether it
// succeeded or not. Callers of catalog.Function.Invoke MUST Release the
// returned reader.
package pgext
