package dto

type SignupDTO struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,strongpwd"`
	Email    string `json:"email"    validate:"required,email"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutDTO may carry the current access token so it is revoked together
// with the refresh token.
type LogoutDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	AccessToken  string `json:"accessToken"`
}

type UpdateUserDTO struct {
	Username *string `json:"username" validate:"omitempty,alphanum,min=3,max=30"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,strongpwd"`
}

type ArticleDTO struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type UpdateArticleDTO struct {
	Title   *string `json:"title"   validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

type CommentDTO struct {
	ArticleID string `json:"articleId" validate:"required,uuid"`
	Content   string `json:"content"   validate:"required,max=2000"`
}
