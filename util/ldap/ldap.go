// Package ldaputil verifies externally-managed credentials against a
// directory server.
package ldaputil

import (
	"crypto/tls"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

type Config struct {
	Host       string
	Port       int
	UseTLS     bool
	BindDN     string
	Password   string
	BaseDN     string
	UserFilter string
	UserAttr   string
}

func dial(cfg Config) (*ldap.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	if cfg.UseTLS {
		return ldap.DialTLS("tcp", addr, &tls.Config{InsecureSkipVerify: true})
	}
	return ldap.Dial("tcp", addr)
}

// VerifyCredentials binds as the service account, resolves the user DN by the
// configured attribute and re-binds with the supplied secret. It returns
// false for an unknown user or a failed bind, and an error only for
// connectivity faults.
func VerifyCredentials(cfg Config, identifier, secret string) (bool, error) {
	conn, err := dial(cfg)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
			return false, err
		}
	}

	if cfg.UserAttr == "" {
		cfg.UserAttr = "mail"
	}
	filter := fmt.Sprintf("(%s=%s)", cfg.UserAttr, ldap.EscapeFilter(identifier))
	if cfg.UserFilter != "" {
		filter = fmt.Sprintf("(&%s(%s=%s))", cfg.UserFilter, cfg.UserAttr, ldap.EscapeFilter(identifier))
	}

	req := ldap.NewSearchRequest(
		cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter,
		[]string{"dn"},
		nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return false, err
	}
	if len(res.Entries) == 0 {
		return false, nil
	}

	if err := conn.Bind(res.Entries[0].DN, secret); err != nil {
		return false, nil
	}
	return true, nil
}
