package pgwire

// pgwire speaks the PostgreSQL frontend/backend protocol, version 3.
//
// 1. Two query flows share one connection loop: Simple Query (a single
//    'Q' message, no parameters, no Describe) and Extended Query
//    (Parse/Bind/Describe/Execute/Sync, each a separate message).
//
// 2. conn owns the wire buffers and delegates all SQL semantics to a
//    *session.Session; this package only encodes/decodes messages and
//    tracks the protocol-level state (current transaction status byte,
//    whether we're mid extended-query and should ignore messages until
//    the next Sync after an error).
//
// 3. Datum <-> wire encoding: parser.Datum values go out through
//    writeTextDatum/writeBinaryDatum; incoming parameter bytes come in
//    through decodeOidDatum, keyed by the oid.Oid the client declared
//    or that Parse inferred.
//
// 4. Every SQLSTATE-carrying error (catalog/analyzer/types/exec/session)
//    implements `SQLState() string`; sqlState() falls back to the
//    generic internal-error code for anything else.
