package service

import (
	"errors"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/util/crypto"
	ldaputil "github.com/bazaarpanel/bazaar/util/ldap"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// secret. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrVerifierUnavailable signals a store or directory fault during
	// verification. It is propagated, never folded into a credential failure.
	ErrVerifierUnavailable = errors.New("credential verifier unavailable")
)

// dummyHash is compared against when the identifier is unknown so both
// failure paths cost a bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserService struct {
	settingService SettingService
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetFirstUser() (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies the credential pair and returns the minimized identity.
// Unknown email and wrong password both return ErrInvalidCredentials; store
// faults return ErrVerifierUnavailable.
func (s *UserService) CheckUser(email, password, twoFactorCode string) (*model.Identity, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		// Equalize cost with the found path.
		crypto.CheckPasswordHash(dummyHash, password)
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, ErrVerifierUnavailable
	}

	if user.External {
		ok, err := s.checkExternal(email, password)
		if err != nil {
			return nil, ErrVerifierUnavailable
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}
	} else if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.checkTwoFactor(twoFactorCode); err != nil {
		return nil, err
	}

	return user.Identity(), nil
}

func (s *UserService) checkExternal(email, password string) (bool, error) {
	cfg, err := s.settingService.GetLdapConfig()
	if err != nil {
		logger.Warning("ldap config err:", err)
		return false, err
	}
	ok, err := ldaputil.VerifyCredentials(cfg, email, password)
	if err != nil {
		logger.Warning("ldap bind err:", err)
		return false, err
	}
	return ok, nil
}

func (s *UserService) checkTwoFactor(code string) error {
	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		logger.Warning("check two factor err:", err)
		return ErrVerifierUnavailable
	}
	if !twoFactorEnable {
		return nil
	}

	twoFactorToken, err := s.settingService.GetTwoFactorToken()
	if err != nil {
		logger.Warning("check two factor token err:", err)
		return ErrVerifierUnavailable
	}
	if gotp.NewDefaultTOTP(twoFactorToken).Now() != code {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *UserService) CreateUser(email, name, password string, role model.Role) (*model.User, error) {
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	user := &model.User{
		Email:    email,
		Name:     name,
		Password: hashedPassword,
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(id int, email, password string) error {
	db := database.GetDB()
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		return err
	}

	if twoFactorEnable {
		s.settingService.SetTwoFactorEnable(false)
		s.settingService.SetTwoFactorToken("")
	}

	return db.Model(model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"email": email, "password": hashedPassword}).
		Error
}

func (s *UserService) UpdateFirstUser(email, password string) error {
	if email == "" {
		return errors.New("email can not be empty")
	} else if password == "" {
		return errors.New("password can not be empty")
	}
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	user := &model.User{}
	findErr := db.Model(model.User{}).First(user).Error
	if database.IsNotFound(findErr) {
		user.Email = email
		user.Name = "Administrator"
		user.Password = hashedPassword
		user.Role = model.RoleAdmin
		return db.Model(model.User{}).Create(user).Error
	} else if findErr != nil {
		return findErr
	}
	user.Email = email
	user.Password = hashedPassword
	return db.Save(user).Error
}
