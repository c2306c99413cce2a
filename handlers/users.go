package handlers

import (
	"crypto/subtle"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"magazin-backend/config"
	"magazin-backend/middleware"
	"magazin-backend/models"
	"magazin-backend/utils"
)

const (
	resetCodeTTL  = 3 * time.Minute
	deleteCodeTTL = 5 * time.Minute
)

// Register creates an account from a multipart form (userName, email,
// phone, password, optional image file) and signs the user in by issuing
// the access/refresh token pair as cookies.
func (h *Handler) Register(c echo.Context) error {
	userName := strings.TrimSpace(c.FormValue("userName"))
	email := normalizeEmail(c.FormValue("email"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	password := c.FormValue("password")

	if userName == "" || email == "" || phone == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}
	if !isValidEmail(email) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email format")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	users := h.DB.Collection("users")
	if err := users.FindOne(ctx, bson.M{"email": email}).Err(); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is already registered")
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	image := ""
	if file, err := c.FormFile("image"); err == nil {
		if image, err = utils.SaveImage(file, h.UploadDir); err != nil {
			return err
		}
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		UserName:  userName,
		Email:     email,
		Phone:     phone,
		Password:  hashed,
		Image:     image,
		IsAdmin:   allowAdminSignup(c.FormValue("isAdmin")),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email is already registered")
		}
		return err
	}

	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		return err
	}
	utils.SetTokenCookies(c, accessToken, refreshToken)

	user.Password = ""
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"message":     "Registration successful",
		"accessToken": accessToken,
		"user":        user,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "No account with this email")
	}
	if err != nil {
		return err
	}

	if !checkPassword(user.Password, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Wrong password")
	}

	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		return err
	}
	utils.SetTokenCookies(c, accessToken, refreshToken)

	user.Password = ""
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Logged in successfully",
		"accessToken": accessToken,
		"user":        user,
	})
}

func (h *Handler) Profile(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// Logout clears both session cookies. Tokens already issued stay valid
// until their natural expiry; there is no server-side revocation list.
func (h *Handler) Logout(c echo.Context) error {
	utils.ClearTokenCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

// RefreshToken mints a new access token from a valid refresh token. The
// refresh token itself is not rotated.
func (h *Handler) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(utils.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token is missing")
	}

	claims, err := utils.ValidateRefreshToken(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	accessToken, err := utils.GenerateAccessToken(claims.UserID, claims.IsAdmin)
	if err != nil {
		return err
	}

	c.SetCookie(utils.TokenCookie(utils.AccessTokenCookie, accessToken, utils.AccessTokenTTL, utils.SecureCookies()))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "accessToken": accessToken})
}

// ForgotPassword stores a 6-digit code with a 3 minute window on the user
// record and emails it.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	email := normalizeEmail(req.Email)
	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "No account with this email")
	}
	if err != nil {
		return err
	}

	code, err := utils.GenerateOneTimeCode()
	if err != nil {
		return err
	}
	expire := time.Now().Add(resetCodeTTL)

	_, err = h.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"resetPasswordToken":  code,
			"resetPasswordExpire": expire,
			"updatedAt":           time.Now(),
		},
	})
	if err != nil {
		return err
	}

	if err := h.Mailer.SendResetCode(user.Email, code); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reset code sent to your email"})
}

// ResetPassword consumes the one-time code: it must match exactly and the
// window must not have passed. The code fields are nulled afterwards, so
// it is single use by construction.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email, code and new password are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "No account with this email")
	}
	if err != nil {
		return err
	}

	if !codeValid(user.ResetPasswordToken, user.ResetPasswordExpire, req.Code, time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Code is invalid or has expired")
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	_, err = h.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"password": hashed, "updatedAt": time.Now()},
		"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password has been reset"})
}

// UpdateUser changes profile fields. Changing the password additionally
// requires the current password to verify.
func (h *Handler) UpdateUser(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		UserName        string `json:"userName"`
		Phone           string `json:"phone"`
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.UserName != "" {
		set["userName"] = strings.TrimSpace(req.UserName)
	}
	if req.Phone != "" {
		set["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.Email != "" {
		email := normalizeEmail(req.Email)
		if !isValidEmail(email) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid email format")
		}
		set["email"] = email
	}
	if req.NewPassword != "" {
		if !checkPassword(user.Password, req.CurrentPassword) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Current password is wrong")
		}
		hashed, err := hashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		set["password"] = hashed
	}

	_, err := h.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email is already registered")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Profile updated"})
}

// UpdateUserImage replaces the profile image and removes the old file.
func (h *Handler) UpdateUserImage(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	image, err := utils.SaveImage(file, h.UploadDir)
	if err != nil {
		return err
	}

	_, err = h.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"image": image, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.RemoveImages(h.UploadDir, image)
		return err
	}

	utils.RemoveImages(h.UploadDir, user.Image)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Image updated", "image": image})
}

// RequestDeleteAccount emails a one-time code with a 5 minute window.
func (h *Handler) RequestDeleteAccount(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	code, err := utils.GenerateOneTimeCode()
	if err != nil {
		return err
	}
	expire := time.Now().Add(deleteCodeTTL)

	_, err = h.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"deleteAccountToken":       code,
			"deleteAccountTokenExpire": expire,
			"updatedAt":                time.Now(),
		},
	})
	if err != nil {
		return err
	}

	if err := h.Mailer.SendDeleteCode(user.Email, code); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Deletion code sent to your email"})
}

// ConfirmDeleteAccount verifies the code, removes the user record and
// then cleans up the profile image. The record goes first: a leftover
// file is harmless, a deleted file with a live account is not.
func (h *Handler) ConfirmDeleteAccount(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Code is required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if !codeValid(user.DeleteAccountToken, user.DeleteAccountTokenExpire, req.Code, time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Code is invalid or has expired")
	}

	if _, err := h.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return err
	}

	utils.RemoveImages(h.UploadDir, user.Image)
	utils.ClearTokenCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Account deleted"})
}

func issueTokens(user models.User) (accessToken, refreshToken string, err error) {
	accessToken, err = utils.GenerateAccessToken(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = utils.GenerateRefreshToken(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// normalizeEmail lowercases and trims so lookups and the unique index are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// allowAdminSignup honors the isAdmin form flag only outside production;
// production admins are flipped directly in the database.
func allowAdminSignup(value string) bool {
	return value == "true" && !config.IsProduction()
}

// codeValid checks a stored one-time code against the submitted one: the
// values must match exactly and the expiry must not have passed. The
// comparison is constant-time so response timing leaks nothing about the
// stored code.
func codeValid(stored string, expire *time.Time, submitted string, now time.Time) bool {
	if stored == "" || submitted == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return false
	}
	return expire != nil && now.Before(*expire)
}
