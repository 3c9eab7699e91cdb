package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"event-feedback-server/models"
	"event-feedback-server/storage"
	"event-feedback-server/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const googleJWKSEndpoint = "https://www.googleapis.com/oauth2/v3/certs"

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists {
		utils.JSONError(ctx, http.StatusConflict, "email_registered", "email is already registered")
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		SocialLogin: false,
	}
	storage.DB.Create(&newUser)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !userExists {
		utils.JSONError(ctx, http.StatusUnauthorized, "credentials_error", errorMsg)
		return
	}
	if existingUser.SocialLogin {
		utils.JSONError(ctx, http.StatusUnauthorized, "credentials_error", "Social Login Account")
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "credentials_error", errorMsg)
		return
	}

	returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp verifies a Google OIDC identity token against Google's
// JWKS and logs the user in, creating an account on first sign-in.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput OAuthUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, httpErr := http.Get(googleJWKSEndpoint)
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	// Keyfunc selects the key matching the token's kid.
	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil || !token.Valid {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "Invalid identity token.")
		return
	}

	claims := token.Claims.(jwt.MapClaims)
	email := strings.ToLower(fmt.Sprint(claims["email"]))
	if email == "" || email == "<nil>" {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "Identity token carries no email.")
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		user = models.User{
			FirstName:      fmt.Sprint(claims["given_name"]),
			LastName:       fmt.Sprint(claims["family_name"]),
			Email:          email,
			SocialLogin:    true,
			SocialProvider: "Google",
		}
		storage.DB.Create(&user)
		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == "Google" {
		returnUser(user, ctx)
		return
	}

	utils.JSONError(ctx, http.StatusConflict, "email_registered", "email is already registered")
}

// GetSession returns the user for a verified access token. The session
// adapter calls this on startup to decide whether a stored token still holds.
func GetSession(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "session user no longer exists")
		return
	}
	ctx.JSON(iris.Map{"data": user})
}

// Logout revokes the presented refresh token. Access tokens simply expire.
func Logout(ctx iris.Context) {
	var input utils.RefreshTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	utils.RevokeRefreshToken(input.RefreshToken)
	ctx.JSON(iris.Map{"data": iris.Map{"signedOut": true}})
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)
	if userExistsQuery.Error != nil {
		if errors.Is(userExistsQuery.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, userExistsQuery.Error
	}
	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"ID":           user.ID,
			"firstName":    user.FirstName,
			"lastName":     user.LastName,
			"email":        user.Email,
			"role":         user.Role,
			"accessToken":  string(tokenPair.AccessToken),
			"refreshToken": string(tokenPair.RefreshToken),
		},
	})
}

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OAuthUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}
