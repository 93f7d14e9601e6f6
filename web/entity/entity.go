// Package entity defines data structures used by the web layer of the bazaar panel.
package entity

import (
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/bazaarpanel/bazaar/util/common"
)

// Msg represents a standard API response with success status, message text,
// and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// AllSetting contains all configuration settings for the bazaar panel.
type AllSetting struct {
	// Web server settings
	WebListen     string `json:"webListen" form:"webListen"`
	WebDomain     string `json:"webDomain" form:"webDomain"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebCertFile   string `json:"webCertFile" form:"webCertFile"`
	WebKeyFile    string `json:"webKeyFile" form:"webKeyFile"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes

	// UI settings
	PageSize     int    `json:"pageSize" form:"pageSize"`
	TimeLocation string `json:"timeLocation" form:"timeLocation"`

	// Security settings
	TwoFactorEnable bool   `json:"twoFactorEnable" form:"twoFactorEnable"`
	TwoFactorToken  string `json:"twoFactorToken" form:"twoFactorToken"`
	MetricsToken    string `json:"metricsToken" form:"metricsToken"`

	// Telegram bot settings
	TgBotEnable      bool   `json:"tgBotEnable" form:"tgBotEnable"`
	TgBotToken       string `json:"tgBotToken" form:"tgBotToken"`
	TgBotChatId      string `json:"tgBotChatId" form:"tgBotChatId"`
	TgBotLoginNotify bool   `json:"tgBotLoginNotify" form:"tgBotLoginNotify"`
	TgLang           string `json:"tgLang" form:"tgLang"`

	// Referral settings
	ReferralInformEnable bool   `json:"referralInformEnable" form:"referralInformEnable"`
	ReferralInformURI    string `json:"referralInformURI" form:"referralInformURI"`
	ReferralLinkBase     string `json:"referralLinkBase" form:"referralLinkBase"`
	KycCleanupCron       string `json:"kycCleanupCron" form:"kycCleanupCron"`

	// LDAP settings for externally-managed accounts
	LdapEnable     bool   `json:"ldapEnable" form:"ldapEnable"`
	LdapHost       string `json:"ldapHost" form:"ldapHost"`
	LdapPort       int    `json:"ldapPort" form:"ldapPort"`
	LdapUseTLS     bool   `json:"ldapUseTLS" form:"ldapUseTLS"`
	LdapBindDN     string `json:"ldapBindDN" form:"ldapBindDN"`
	LdapPassword   string `json:"ldapPassword" form:"ldapPassword"`
	LdapBaseDN     string `json:"ldapBaseDN" form:"ldapBaseDN"`
	LdapUserFilter string `json:"ldapUserFilter" form:"ldapUserFilter"`
	LdapUserAttr   string `json:"ldapUserAttr" form:"ldapUserAttr"`
}

// CheckValid validates the settings, checking IP addresses, ports, SSL
// certificates, and path shapes.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.WebCertFile != "" || s.WebKeyFile != "" {
		_, err := tls.LoadX509KeyPair(s.WebCertFile, s.WebKeyFile)
		if err != nil {
			return common.NewErrorf("cert file <%v> or key file <%v> invalid: %v", s.WebCertFile, s.WebKeyFile, err)
		}
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	if s.ReferralInformURI != "" {
		u, err := url.Parse(s.ReferralInformURI)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return common.NewError("referral inform URI is not a valid http(s) url:", s.ReferralInformURI)
		}
	}

	_, err := time.LoadLocation(s.TimeLocation)
	if err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}

	return nil
}
