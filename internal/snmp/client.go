package snmp

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// ErrOidAbsent is returned when a device answers but does not implement the
// requested OID. Callers treat this as an expected condition, not a failure.
var ErrOidAbsent = errors.New("snmp: oid not implemented by device")

// Profile carries the connection parameters for one device.
type Profile struct {
	Host      string
	Port      uint16
	Community string
	Version   string // "1", "2c" or "3"
	Timeout   time.Duration
	Retries   int

	// USM credentials, consulted only when Version is "3".
	SecurityLevel  string // noAuthNoPriv, authNoPriv or authPriv
	Username       string
	AuthProtocol   string // MD5, SHA, SHA224, SHA256, SHA384, SHA512
	AuthPassphrase string
	PrivProtocol   string // DES, AES, AES192, AES256
	PrivPassphrase string
}

// Value is one decoded varbind.
type Value struct {
	OID     string
	Str     string
	Int     int64
	Numeric bool
}

// Transport is the minimal SNMP surface the pollers need. Implementations
// must be safe for use from a single goroutine; the scheduler creates one
// transport per job.
type Transport interface {
	Get(ctx context.Context, oid string) (Value, error)
	GetMultiple(ctx context.Context, oids []string) (map[string]Value, error)
	Walk(ctx context.Context, baseOID string, fn func(Value) error) error
}

// Factory builds a transport for a device profile. Injected so tests can
// substitute a fake device.
type Factory func(Profile) Transport

// NewClient is the production Factory.
func NewClient(p Profile) Transport {
	return &client{profile: p}
}

// client wraps gosnmp with a connect-per-call model: printers are polled at
// minute scale, so holding UDP sockets between cycles buys nothing.
type client struct {
	profile Profile
}

func (c *client) Get(ctx context.Context, oid string) (Value, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return Value{}, err
	}
	defer conn.Conn.Close()

	result, err := conn.Get([]string{oid})
	if err != nil {
		return Value{}, fmt.Errorf("snmp get %s: %w", oid, err)
	}
	if result == nil || len(result.Variables) == 0 {
		return Value{}, fmt.Errorf("snmp get %s: empty response", oid)
	}
	if result.Error == gosnmp.NoSuchName {
		return Value{}, ErrOidAbsent
	}
	if result.Error != gosnmp.NoError {
		return Value{}, fmt.Errorf("snmp get %s: error status %s", oid, result.Error)
	}

	return decodePDU(result.Variables[0])
}

func (c *client) GetMultiple(ctx context.Context, oids []string) (map[string]Value, error) {
	values := make(map[string]Value, len(oids))
	if len(oids) == 0 {
		return values, nil
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Conn.Close()

	result, err := conn.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("snmp get multiple: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("snmp get multiple: empty response")
	}

	for i, variable := range result.Variables {
		if i >= len(oids) {
			break
		}
		v, err := decodePDU(variable)
		if err != nil {
			continue
		}
		values[oids[i]] = v
	}
	return values, nil
}

func (c *client) Walk(ctx context.Context, baseOID string, fn func(Value) error) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Conn.Close()

	err = conn.Walk(baseOID, func(pdu gosnmp.SnmpPDU) error {
		v, err := decodePDU(pdu)
		if err != nil {
			return nil
		}
		return fn(v)
	})
	if err != nil {
		return fmt.Errorf("snmp walk %s: %w", baseOID, err)
	}
	return nil
}

func (c *client) connect(ctx context.Context) (*gosnmp.GoSNMP, error) {
	params, err := c.profile.params()
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	if err := params.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s:%d: %w", c.profile.Host, c.profile.Port, err)
	}
	return params, nil
}

// params builds the gosnmp connection parameters for the profile. A v3
// profile without a username is a configuration error and fails here, before
// any packet goes out, rather than timing out against the device.
func (p Profile) params() (*gosnmp.GoSNMP, error) {
	params := &gosnmp.GoSNMP{
		Target:  p.Host,
		Port:    p.Port,
		Timeout: p.Timeout,
		Retries: p.Retries,
	}

	switch p.Version {
	case "1":
		params.Version = gosnmp.Version1
		params.Community = p.Community
	case "3":
		if p.Username == "" {
			return nil, fmt.Errorf("snmp v3 profile for %s: username is required", p.Host)
		}
		auth, err := v3AuthProtocol(p.AuthProtocol, p.AuthPassphrase)
		if err != nil {
			return nil, err
		}
		priv, err := v3PrivProtocol(p.PrivProtocol, p.PrivPassphrase)
		if err != nil {
			return nil, err
		}
		params.Version = gosnmp.Version3
		params.SecurityModel = gosnmp.UserSecurityModel
		params.MsgFlags = p.msgFlags()
		params.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 p.Username,
			AuthenticationProtocol:   auth,
			AuthenticationPassphrase: p.AuthPassphrase,
			PrivacyProtocol:          priv,
			PrivacyPassphrase:        p.PrivPassphrase,
		}
	default:
		params.Version = gosnmp.Version2c
		params.Community = p.Community
	}

	return params, nil
}

// msgFlags resolves the v3 security level. When the profile does not name
// one, the strongest level its credentials can support is used.
func (p Profile) msgFlags() gosnmp.SnmpV3MsgFlags {
	switch p.SecurityLevel {
	case "noAuthNoPriv":
		return gosnmp.NoAuthNoPriv
	case "authNoPriv":
		return gosnmp.AuthNoPriv
	case "authPriv":
		return gosnmp.AuthPriv
	}
	if p.PrivPassphrase != "" {
		return gosnmp.AuthPriv
	}
	if p.AuthPassphrase != "" {
		return gosnmp.AuthNoPriv
	}
	return gosnmp.NoAuthNoPriv
}

var v3AuthProtocols = map[string]gosnmp.SnmpV3AuthProtocol{
	"MD5":    gosnmp.MD5,
	"SHA":    gosnmp.SHA,
	"SHA224": gosnmp.SHA224,
	"SHA256": gosnmp.SHA256,
	"SHA384": gosnmp.SHA384,
	"SHA512": gosnmp.SHA512,
}

func v3AuthProtocol(name, passphrase string) (gosnmp.SnmpV3AuthProtocol, error) {
	if passphrase == "" {
		return gosnmp.NoAuth, nil
	}
	if name == "" {
		return gosnmp.SHA, nil
	}
	if proto, ok := v3AuthProtocols[strings.ToUpper(name)]; ok {
		return proto, nil
	}
	return gosnmp.NoAuth, fmt.Errorf("snmp v3: unsupported auth protocol %q", name)
}

var v3PrivProtocols = map[string]gosnmp.SnmpV3PrivProtocol{
	"DES":    gosnmp.DES,
	"AES":    gosnmp.AES,
	"AES192": gosnmp.AES192,
	"AES256": gosnmp.AES256,
}

func v3PrivProtocol(name, passphrase string) (gosnmp.SnmpV3PrivProtocol, error) {
	if passphrase == "" {
		return gosnmp.NoPriv, nil
	}
	if name == "" {
		return gosnmp.AES, nil
	}
	if proto, ok := v3PrivProtocols[strings.ToUpper(name)]; ok {
		return proto, nil
	}
	return gosnmp.NoPriv, fmt.Errorf("snmp v3: unsupported priv protocol %q", name)
}

// decodePDU converts a varbind into a Value. Exception types (NoSuchObject
// and friends) surface as ErrOidAbsent.
func decodePDU(pdu gosnmp.SnmpPDU) (Value, error) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return Value{}, ErrOidAbsent
	}

	v := Value{OID: pdu.Name}
	if pdu.Value == nil {
		return v, nil
	}

	switch raw := pdu.Value.(type) {
	case string:
		v.Str = strings.TrimRight(raw, "\x00")
	case []byte:
		v.Str = decodeBytes(raw)
	case int:
		v.Int, v.Numeric = int64(raw), true
	case int64:
		v.Int, v.Numeric = raw, true
	case uint:
		v.Int, v.Numeric = int64(raw), true
	case uint32:
		v.Int, v.Numeric = int64(raw), true
	case uint64:
		v.Int, v.Numeric = int64(raw), true
	default:
		v.Str = fmt.Sprintf("%v", raw)
	}

	if !v.Numeric && v.Str != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64); err == nil {
			v.Int, v.Numeric = n, true
		}
	} else if v.Numeric {
		v.Str = strconv.FormatInt(v.Int, 10)
	}

	return v, nil
}

// decodeBytes renders an octet string. Six raw bytes are assumed to be a MAC
// address; anything else must look like text or is dropped.
func decodeBytes(b []byte) string {
	if len(b) == 6 {
		h := hex.EncodeToString(b)
		return fmt.Sprintf("%s:%s:%s:%s:%s:%s", h[0:2], h[2:4], h[4:6], h[6:8], h[8:10], h[10:12])
	}
	if isLikelyText(b) {
		return strings.TrimRight(string(b), "\x00")
	}
	return ""
}

// isLikelyText reports whether at least 80% of the bytes are printable ASCII
// or common whitespace.
func isLikelyText(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	printable := 0
	for _, c := range b {
		if (c >= 32 && c <= 126) || c == 9 || c == 10 || c == 13 {
			printable++
		}
	}
	return float64(printable)/float64(len(b)) >= 0.8
}
