package oid

import (
	"strings"

	pqoid "github.com/lib/pq/oid"
)

// Built-in types.
const (
	BoolOid          BuiltinOid = BuiltinOid(pqoid.T_bool)
	ByteaOid         BuiltinOid = BuiltinOid(pqoid.T_bytea)
	CharOid          BuiltinOid = BuiltinOid(pqoid.T_char)
	NameOid          BuiltinOid = BuiltinOid(pqoid.T_name)
	Int8Oid          BuiltinOid = BuiltinOid(pqoid.T_int8)
	Int2Oid          BuiltinOid = BuiltinOid(pqoid.T_int2)
	Int2VectorOid    BuiltinOid = BuiltinOid(pqoid.T_int2vector)
	Int4Oid          BuiltinOid = BuiltinOid(pqoid.T_int4)
	RegprocOid       BuiltinOid = BuiltinOid(pqoid.T_regproc)
	TextOid          BuiltinOid = BuiltinOid(pqoid.T_text)
	OidOid           BuiltinOid = BuiltinOid(pqoid.T_oid)
	TidOid           BuiltinOid = BuiltinOid(pqoid.T_tid)
	XidOid           BuiltinOid = BuiltinOid(pqoid.T_xid)
	CidOid           BuiltinOid = BuiltinOid(pqoid.T_cid)
	OidVectorOid     BuiltinOid = BuiltinOid(pqoid.T_oidvector)
	JSONOid          BuiltinOid = BuiltinOid(pqoid.T_json)
	XMLOid           BuiltinOid = BuiltinOid(pqoid.T_xml)
	PgNodeTreeOid    BuiltinOid = BuiltinOid(pqoid.T_pg_node_tree)
	PointOid         BuiltinOid = BuiltinOid(pqoid.T_point)
	LsegOid          BuiltinOid = BuiltinOid(pqoid.T_lseg)
	PathOid          BuiltinOid = BuiltinOid(pqoid.T_path)
	BoxOid           BuiltinOid = BuiltinOid(pqoid.T_box)
	PolygonOid       BuiltinOid = BuiltinOid(pqoid.T_polygon)
	LineOid          BuiltinOid = BuiltinOid(pqoid.T_line)
	CidrOid          BuiltinOid = BuiltinOid(pqoid.T_cidr)
	Float4Oid        BuiltinOid = BuiltinOid(pqoid.T_float4)
	Float8Oid        BuiltinOid = BuiltinOid(pqoid.T_float8)
	UnknownOid       BuiltinOid = BuiltinOid(pqoid.T_unknown)
	CircleOid        BuiltinOid = BuiltinOid(pqoid.T_circle)
	MoneyOid         BuiltinOid = BuiltinOid(pqoid.T_money)
	MacaddrOid       BuiltinOid = BuiltinOid(pqoid.T_macaddr)
	InetOid          BuiltinOid = BuiltinOid(pqoid.T_inet)
	AclitemOid       BuiltinOid = BuiltinOid(pqoid.T_aclitem)
	BpcharOid        BuiltinOid = BuiltinOid(pqoid.T_bpchar)
	VarcharOid       BuiltinOid = BuiltinOid(pqoid.T_varchar)
	DateOid          BuiltinOid = BuiltinOid(pqoid.T_date)
	TimeOid          BuiltinOid = BuiltinOid(pqoid.T_time)
	TimestampOid     BuiltinOid = BuiltinOid(pqoid.T_timestamp)
	TimestamptzOid   BuiltinOid = BuiltinOid(pqoid.T_timestamptz)
	IntervalOid      BuiltinOid = BuiltinOid(pqoid.T_interval)
	TimetzOid        BuiltinOid = BuiltinOid(pqoid.T_timetz)
	BitOid           BuiltinOid = BuiltinOid(pqoid.T_bit)
	VarbitOid        BuiltinOid = BuiltinOid(pqoid.T_varbit)
	NumericOid       BuiltinOid = BuiltinOid(pqoid.T_numeric)
	RefcursorOid     BuiltinOid = BuiltinOid(pqoid.T_refcursor)
	RegprocedureOid  BuiltinOid = BuiltinOid(pqoid.T_regprocedure)
	RegoperOid       BuiltinOid = BuiltinOid(pqoid.T_regoper)
	RegoperatorOid   BuiltinOid = BuiltinOid(pqoid.T_regoperator)
	RegclassOid      BuiltinOid = BuiltinOid(pqoid.T_regclass)
	RegtypeOid       BuiltinOid = BuiltinOid(pqoid.T_regtype)
	UUIDOid          BuiltinOid = BuiltinOid(pqoid.T_uuid)
	PgLsnOid         BuiltinOid = BuiltinOid(pqoid.T_pg_lsn)
	TsvectorOid      BuiltinOid = BuiltinOid(pqoid.T_tsvector)
	TsqueryOid       BuiltinOid = BuiltinOid(pqoid.T_tsquery)
	RegconfigOid     BuiltinOid = BuiltinOid(pqoid.T_regconfig)
	RegdictionaryOid BuiltinOid = BuiltinOid(pqoid.T_regdictionary)
	JSONBOid         BuiltinOid = BuiltinOid(pqoid.T_jsonb)
	Int4RangeOid     BuiltinOid = BuiltinOid(pqoid.T_int4range)
	NumRangeOid      BuiltinOid = BuiltinOid(pqoid.T_numrange)
	TsRangeOid       BuiltinOid = BuiltinOid(pqoid.T_tsrange)
	TstzRangeOid     BuiltinOid = BuiltinOid(pqoid.T_tstzrange)
	DateRangeOid     BuiltinOid = BuiltinOid(pqoid.T_daterange)
	Int8RangeOid     BuiltinOid = BuiltinOid(pqoid.T_int8range)
	JSONPathOid      BuiltinOid = 4072
	RegnamespaceOid  BuiltinOid = BuiltinOid(pqoid.T_regnamespace)
	RegroleOid       BuiltinOid = BuiltinOid(pqoid.T_regrole)
	RegcollationOid  BuiltinOid = 4191
	PgSnapshotOid    BuiltinOid = 5038
	Xid8Oid          BuiltinOid = 5069
)

// Pseudo-types.
const (
	RecordOid          BuiltinOid = BuiltinOid(pqoid.T_record)
	CstringOid         BuiltinOid = BuiltinOid(pqoid.T_cstring)
	AnyOid             BuiltinOid = BuiltinOid(pqoid.T_any)
	AnyarrayOid        BuiltinOid = BuiltinOid(pqoid.T_anyarray)
	VoidOid            BuiltinOid = BuiltinOid(pqoid.T_void)
	TriggerOid         BuiltinOid = BuiltinOid(pqoid.T_trigger)
	LanguageHandlerOid BuiltinOid = BuiltinOid(pqoid.T_language_handler)
	InternalOid        BuiltinOid = BuiltinOid(pqoid.T_internal)
	AnyelementOid      BuiltinOid = BuiltinOid(pqoid.T_anyelement)
	AnynonarrayOid     BuiltinOid = BuiltinOid(pqoid.T_anynonarray)
	FdwHandlerOid      BuiltinOid = BuiltinOid(pqoid.T_fdw_handler)
	TsmHandlerOid      BuiltinOid = BuiltinOid(pqoid.T_tsm_handler)
	AnyenumOid         BuiltinOid = BuiltinOid(pqoid.T_anyenum)
	AnyrangeOid        BuiltinOid = BuiltinOid(pqoid.T_anyrange)
	EventTriggerOid    BuiltinOid = BuiltinOid(pqoid.T_event_trigger)
	AnycompatibleOid   BuiltinOid = 5077
)

// Array types.
const (
	CidrArrayOid        BuiltinOid = BuiltinOid(pqoid.T__cidr)
	BoolArrayOid        BuiltinOid = BuiltinOid(pqoid.T__bool)
	ByteaArrayOid       BuiltinOid = BuiltinOid(pqoid.T__bytea)
	CharArrayOid        BuiltinOid = BuiltinOid(pqoid.T__char)
	NameArrayOid        BuiltinOid = BuiltinOid(pqoid.T__name)
	Int2ArrayOid        BuiltinOid = BuiltinOid(pqoid.T__int2)
	Int4ArrayOid        BuiltinOid = BuiltinOid(pqoid.T__int4)
	TextArrayOid        BuiltinOid = BuiltinOid(pqoid.T__text)
	BpcharArrayOid      BuiltinOid = BuiltinOid(pqoid.T__bpchar)
	VarcharArrayOid     BuiltinOid = BuiltinOid(pqoid.T__varchar)
	Int8ArrayOid        BuiltinOid = BuiltinOid(pqoid.T__int8)
	PointArrayOid       BuiltinOid = BuiltinOid(pqoid.T__point)
	BoxArrayOid         BuiltinOid = BuiltinOid(pqoid.T__box)
	Float4ArrayOid      BuiltinOid = BuiltinOid(pqoid.T__float4)
	Float8ArrayOid      BuiltinOid = BuiltinOid(pqoid.T__float8)
	OidArrayOid         BuiltinOid = BuiltinOid(pqoid.T__oid)
	InetArrayOid        BuiltinOid = BuiltinOid(pqoid.T__inet)
	TimestampArrayOid   BuiltinOid = BuiltinOid(pqoid.T__timestamp)
	DateArrayOid        BuiltinOid = BuiltinOid(pqoid.T__date)
	TimeArrayOid        BuiltinOid = BuiltinOid(pqoid.T__time)
	TimestamptzArrayOid BuiltinOid = BuiltinOid(pqoid.T__timestamptz)
	IntervalArrayOid    BuiltinOid = BuiltinOid(pqoid.T__interval)
	NumericArrayOid     BuiltinOid = BuiltinOid(pqoid.T__numeric)
	CstringArrayOid     BuiltinOid = BuiltinOid(pqoid.T__cstring)
	TimetzArrayOid      BuiltinOid = BuiltinOid(pqoid.T__timetz)
	RecordArrayOid      BuiltinOid = BuiltinOid(pqoid.T__record)
	UUIDArrayOid        BuiltinOid = BuiltinOid(pqoid.T__uuid)
	JSONBArrayOid       BuiltinOid = BuiltinOid(pqoid.T__jsonb)
)

// System catalogs.
const (
	TableSpaceRelationID            BuiltinOid = 1213
	TypeRelationID                  BuiltinOid = 1247
	AttributeRelationID             BuiltinOid = 1249
	ProcedureRelationID             BuiltinOid = 1255
	RelationRelationID              BuiltinOid = 1259
	AuthIDRelationID                BuiltinOid = 1260
	DatabaseRelationID              BuiltinOid = 1262
	AccessMethodRelationID          BuiltinOid = 2601
	AccessMethodOperatorRelationID  BuiltinOid = 2602
	AccessMethodProcedureRelationID BuiltinOid = 2603
	CastRelationID                  BuiltinOid = 2605
	ConstraintRelationID            BuiltinOid = 2606
	DependRelationID                BuiltinOid = 2608
	DescriptionRelationID           BuiltinOid = 2609
	IndexRelationID                 BuiltinOid = 2610
	LanguageRelationID              BuiltinOid = 2612
	NamespaceRelationID             BuiltinOid = 2615
	OperatorClassRelationID         BuiltinOid = 2616
	OperatorRelationID              BuiltinOid = 2617
	TriggerRelationID               BuiltinOid = 2620
	OperatorFamilyRelationID        BuiltinOid = 2753
	ExtensionRelationID             BuiltinOid = 3079
	CollationRelationID             BuiltinOid = 3456
	EnumRelationID                  BuiltinOid = 3501
)

// Namespaces, roles, databases, access methods, collations and languages.
const (
	HeapTableAmOid       BuiltinOid = 2
	Template1DbOid       BuiltinOid = 1
	BootstrapSuperuserID BuiltinOid = 10
	PgCatalogNamespace   BuiltinOid = 11
	InternalLanguageID   BuiltinOid = 12
	ClanguageID          BuiltinOid = 13
	SQLlanguageID        BuiltinOid = 14
	PgToastNamespace     BuiltinOid = 99
	DefaultCollationOid  BuiltinOid = 100
	BtreeAmOid           BuiltinOid = 403
	HashAmOid            BuiltinOid = 405
	GistAmOid            BuiltinOid = 783
	CCollationOid        BuiltinOid = 950
	PosixCollationOid    BuiltinOid = 951
	PgPublicNamespace    BuiltinOid = 2200
	GinAmOid             BuiltinOid = 2742
	BrinAmOid            BuiltinOid = 3580
	SpgistAmOid          BuiltinOid = 4000
)

// typeOids are the built-in types known to lib/pq. Their symbolic names are
// derived from its type name table.
var typeOids = []BuiltinOid{
	BoolOid,
	ByteaOid,
	CharOid,
	NameOid,
	Int8Oid,
	Int2Oid,
	Int2VectorOid,
	Int4Oid,
	RegprocOid,
	TextOid,
	OidOid,
	TidOid,
	XidOid,
	CidOid,
	OidVectorOid,
	JSONOid,
	XMLOid,
	PgNodeTreeOid,
	PointOid,
	LsegOid,
	PathOid,
	BoxOid,
	PolygonOid,
	LineOid,
	CidrOid,
	Float4Oid,
	Float8Oid,
	UnknownOid,
	CircleOid,
	MoneyOid,
	MacaddrOid,
	InetOid,
	AclitemOid,
	BpcharOid,
	VarcharOid,
	DateOid,
	TimeOid,
	TimestampOid,
	TimestamptzOid,
	IntervalOid,
	TimetzOid,
	BitOid,
	VarbitOid,
	NumericOid,
	RefcursorOid,
	RegprocedureOid,
	RegoperOid,
	RegoperatorOid,
	RegclassOid,
	RegtypeOid,
	UUIDOid,
	PgLsnOid,
	TsvectorOid,
	TsqueryOid,
	RegconfigOid,
	RegdictionaryOid,
	JSONBOid,
	Int4RangeOid,
	NumRangeOid,
	TsRangeOid,
	TstzRangeOid,
	DateRangeOid,
	Int8RangeOid,
	RegnamespaceOid,
	RegroleOid,
	RecordOid,
	CstringOid,
	AnyOid,
	AnyarrayOid,
	VoidOid,
	TriggerOid,
	LanguageHandlerOid,
	InternalOid,
	AnyelementOid,
	AnynonarrayOid,
	FdwHandlerOid,
	TsmHandlerOid,
	AnyenumOid,
	AnyrangeOid,
	EventTriggerOid,
	CidrArrayOid,
	BoolArrayOid,
	ByteaArrayOid,
	CharArrayOid,
	NameArrayOid,
	Int2ArrayOid,
	Int4ArrayOid,
	TextArrayOid,
	BpcharArrayOid,
	VarcharArrayOid,
	Int8ArrayOid,
	PointArrayOid,
	BoxArrayOid,
	Float4ArrayOid,
	Float8ArrayOid,
	OidArrayOid,
	InetArrayOid,
	TimestampArrayOid,
	DateArrayOid,
	TimeArrayOid,
	TimestamptzArrayOid,
	IntervalArrayOid,
	NumericArrayOid,
	CstringArrayOid,
	TimetzArrayOid,
	RecordArrayOid,
	UUIDArrayOid,
	JSONBArrayOid,
}

// libpqName turns a lib/pq type name into the engine symbol, e.g. INT4 into
// INT4OID and _INT4 into INT4ARRAYOID.
func libpqName(o BuiltinOid) string {
	name := pqoid.TypeName[pqoid.Oid(o)]
	if elem, ok := strings.CutPrefix(name, "_"); ok {
		return elem + "ARRAYOID"
	}
	return name + "OID"
}

var names = func() map[BuiltinOid]string {
	m := map[BuiltinOid]string{
		// Types newer than lib/pq's table.
		JSONPathOid:      "JSONPATHOID",
		RegcollationOid:  "REGCOLLATIONOID",
		PgSnapshotOid:    "PG_SNAPSHOTOID",
		Xid8Oid:          "XID8OID",
		AnycompatibleOid: "ANYCOMPATIBLEOID",

		TableSpaceRelationID:            "TableSpaceRelationId",
		TypeRelationID:                  "TypeRelationId",
		AttributeRelationID:             "AttributeRelationId",
		ProcedureRelationID:             "ProcedureRelationId",
		RelationRelationID:              "RelationRelationId",
		AuthIDRelationID:                "AuthIdRelationId",
		DatabaseRelationID:              "DatabaseRelationId",
		AccessMethodRelationID:          "AccessMethodRelationId",
		AccessMethodOperatorRelationID:  "AccessMethodOperatorRelationId",
		AccessMethodProcedureRelationID: "AccessMethodProcedureRelationId",
		CastRelationID:                  "CastRelationId",
		ConstraintRelationID:            "ConstraintRelationId",
		DependRelationID:                "DependRelationId",
		DescriptionRelationID:           "DescriptionRelationId",
		IndexRelationID:                 "IndexRelationId",
		LanguageRelationID:              "LanguageRelationId",
		NamespaceRelationID:             "NamespaceRelationId",
		OperatorClassRelationID:         "OperatorClassRelationId",
		OperatorRelationID:              "OperatorRelationId",
		TriggerRelationID:               "TriggerRelationId",
		OperatorFamilyRelationID:        "OperatorFamilyRelationId",
		ExtensionRelationID:             "ExtensionRelationId",
		CollationRelationID:             "CollationRelationId",
		EnumRelationID:                  "EnumRelationId",
		HeapTableAmOid:                  "HEAP_TABLE_AM_OID",
		Template1DbOid:                  "Template1DbOid",
		BootstrapSuperuserID:            "BOOTSTRAP_SUPERUSERID",
		PgCatalogNamespace:              "PG_CATALOG_NAMESPACE",
		InternalLanguageID:              "INTERNALlanguageId",
		ClanguageID:                     "ClanguageId",
		SQLlanguageID:                   "SQLlanguageId",
		PgToastNamespace:                "PG_TOAST_NAMESPACE",
		DefaultCollationOid:             "DEFAULT_COLLATION_OID",
		BtreeAmOid:                      "BTREE_AM_OID",
		HashAmOid:                       "HASH_AM_OID",
		GistAmOid:                       "GIST_AM_OID",
		CCollationOid:                   "C_COLLATION_OID",
		PosixCollationOid:               "POSIX_COLLATION_OID",
		PgPublicNamespace:               "PG_PUBLIC_NAMESPACE",
		GinAmOid:                        "GIN_AM_OID",
		BrinAmOid:                       "BRIN_AM_OID",
		SpgistAmOid:                     "SPGIST_AM_OID",
	}
	for _, o := range typeOids {
		m[o] = libpqName(o)
	}
	return m
}()
