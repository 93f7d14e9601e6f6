package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/util/common"
	ldaputil "github.com/bazaarpanel/bazaar/util/ldap"
	"github.com/bazaarpanel/bazaar/util/random"
	"github.com/bazaarpanel/bazaar/util/reflect_util"
	"github.com/bazaarpanel/bazaar/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":            "",
	"webDomain":            "",
	"webPort":              "8080",
	"webCertFile":          "",
	"webKeyFile":           "",
	"secret":               random.Seq(32),
	"webBasePath":          "/",
	"sessionMaxAge":        "60",
	"pageSize":             "50",
	"timeLocation":         "UTC",
	"twoFactorEnable":      "false",
	"twoFactorToken":       "",
	"metricsToken":         "",
	"tgBotEnable":          "false",
	"tgBotToken":           "",
	"tgBotChatId":          "",
	"tgBotLoginNotify":     "true",
	"tgLang":               "en-US",
	"referralInformEnable": "false",
	"referralInformURI":    "",
	"referralLinkBase":     "",
	"kycCleanupCron":       "@daily",
	"ldapEnable":           "false",
	"ldapHost":             "",
	"ldapPort":             "389",
	"ldapUseTLS":           "false",
	"ldapBindDN":           "",
	"ldapPassword":         "",
	"ldapBaseDN":           "",
	"ldapUserFilter":       "",
	"ldapUserAttr":         "mail",
}

type SettingService struct{}

func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	err := db.Model(model.Setting{}).Not("key = ?", "secret").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	allSetting := &entity.AllSetting{}
	t := reflect.TypeOf(allSetting).Elem()
	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)

	setSetting := func(key, value string) (err error) {
		defer func() {
			panicErr := recover()
			if panicErr != nil {
				err = errors.New(fmt.Sprint(panicErr))
			}
		}()

		var found bool
		var field reflect.StructField
		for _, f := range fields {
			if f.Tag.Get("json") == key {
				field = f
				found = true
				break
			}
		}

		if !found {
			// Generated settings are not surfaced for editing.
			return nil
		}

		fieldV := v.FieldByName(field.Name)
		switch t := fieldV.Interface().(type) {
		case int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			fieldV.SetInt(n)
		case string:
			fieldV.SetString(value)
		case bool:
			fieldV.SetBool(value == "true")
		default:
			return common.NewErrorf("unknown field %v type %v", key, t)
		}
		return
	}

	keyMap := map[string]bool{}
	for _, setting := range settings {
		keyMap[setting.Key] = true
		err := setSetting(setting.Key, setting.Value)
		if err != nil {
			return nil, err
		}
	}

	for key, value := range defaultValueMap {
		if keyMap[key] {
			continue
		}
		err := setSetting(key, value)
		if err != nil {
			return nil, err
		}
	}

	return allSetting, nil
}

func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	if err := allSetting.CheckValid(); err != nil {
		return err
	}

	v := reflect.ValueOf(allSetting).Elem()
	t := reflect.TypeOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)
	errs := make([]error, 0)
	for _, field := range fields {
		key := field.Tag.Get("json")
		fieldV := v.FieldByName(field.Name)
		value := fmt.Sprint(fieldV.Interface())
		err := s.saveSetting(key, value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.getString(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(key string, value bool) error {
	return s.setString(key, strconv.FormatBool(value))
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetWebDomain() (string, error) {
	return s.getString("webDomain")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetCertFile() (string, error) {
	return s.getString("webCertFile")
}

func (s *SettingService) GetKeyFile() (string, error) {
	return s.getString("webKeyFile")
}

// GetSecret returns the signing secret for bearer access tokens. Generated on
// first use and persisted so tokens survive restarts.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if err != nil {
		return nil, err
	}
	if _, getErr := s.getSetting("secret"); database.IsNotFound(getErr) {
		if err := s.saveSetting("secret", secret); err != nil {
			return nil, err
		}
	}
	return []byte(secret), nil
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath, nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt("pageSize")
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		location, _ = time.LoadLocation(defaultLocation)
	}
	return location, nil
}

func (s *SettingService) GetTwoFactorEnable() (bool, error) {
	return s.getBool("twoFactorEnable")
}

func (s *SettingService) SetTwoFactorEnable(value bool) error {
	return s.setBool("twoFactorEnable", value)
}

func (s *SettingService) GetTwoFactorToken() (string, error) {
	return s.getString("twoFactorToken")
}

func (s *SettingService) SetTwoFactorToken(token string) error {
	return s.setString("twoFactorToken", token)
}

func (s *SettingService) GetMetricsToken() (string, error) {
	return s.getString("metricsToken")
}

func (s *SettingService) GetTgbotEnabled() (bool, error) {
	return s.getBool("tgBotEnable")
}

func (s *SettingService) SetTgbotEnabled(value bool) error {
	return s.setBool("tgBotEnable", value)
}

func (s *SettingService) GetTgBotToken() (string, error) {
	return s.getString("tgBotToken")
}

func (s *SettingService) SetTgBotToken(token string) error {
	return s.setString("tgBotToken", token)
}

func (s *SettingService) GetTgBotChatId() (string, error) {
	return s.getString("tgBotChatId")
}

func (s *SettingService) SetTgBotChatId(chatIds string) error {
	return s.setString("tgBotChatId", chatIds)
}

func (s *SettingService) GetTgBotLoginNotify() (bool, error) {
	return s.getBool("tgBotLoginNotify")
}

func (s *SettingService) GetTgLang() (string, error) {
	return s.getString("tgLang")
}

func (s *SettingService) GetReferralInformEnable() (bool, error) {
	return s.getBool("referralInformEnable")
}

func (s *SettingService) GetReferralInformURI() (string, error) {
	return s.getString("referralInformURI")
}

func (s *SettingService) GetReferralLinkBase() (string, error) {
	return s.getString("referralLinkBase")
}

func (s *SettingService) GetKycCleanupCron() (string, error) {
	return s.getString("kycCleanupCron")
}

func (s *SettingService) GetLdapEnable() (bool, error) {
	return s.getBool("ldapEnable")
}

// GetLdapConfig assembles the directory configuration from settings.
func (s *SettingService) GetLdapConfig() (ldaputil.Config, error) {
	var cfg ldaputil.Config
	var err error

	if cfg.Host, err = s.getString("ldapHost"); err != nil {
		return cfg, err
	}
	if cfg.Port, err = s.getInt("ldapPort"); err != nil {
		return cfg, err
	}
	if cfg.UseTLS, err = s.getBool("ldapUseTLS"); err != nil {
		return cfg, err
	}
	if cfg.BindDN, err = s.getString("ldapBindDN"); err != nil {
		return cfg, err
	}
	if cfg.Password, err = s.getString("ldapPassword"); err != nil {
		return cfg, err
	}
	if cfg.BaseDN, err = s.getString("ldapBaseDN"); err != nil {
		return cfg, err
	}
	if cfg.UserFilter, err = s.getString("ldapUserFilter"); err != nil {
		return cfg, err
	}
	if cfg.UserAttr, err = s.getString("ldapUserAttr"); err != nil {
		return cfg, err
	}
	return cfg, nil
}
