package newsapi

// APIResponse is the /v2/everything envelope. Code and Message are only set
// when Status is "error".
type APIResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []APIArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type APIArticle struct {
	Source      APISource `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     *string   `json:"content"`
}

type APISource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}
