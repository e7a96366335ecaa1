package httperrors

import (
	"fmt"
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/internal/errortracking"
	"gitlab.com/gitlab-org/static-pipeline/internal/logging"
)

type content struct {
	status    int
	title     string
	header    string
	subHeader string
}

var (
	content404 = content{
		http.StatusNotFound,
		"Not Found (404)",
		"The page you're looking for could not be found.",
		`<p>Make sure the address is correct and that the page hasn't moved.</p>`,
	}
	content414 = content{
		http.StatusRequestURITooLong,
		"Request URI Too Long (414)",
		"Request URI Too Long.",
		`<p>The URI provided was too long for the server to process.</p>
    <p>Try to make the request URI shorter.</p>`,
	}
	content429 = content{
		http.StatusTooManyRequests,
		"Too Many Requests (429)",
		"Too many requests.",
		`<p>The resource that you are attempting to access is being rate limited.</p>`,
	}
	content500 = content{
		http.StatusInternalServerError,
		"Something went wrong (500)",
		"Whoops, something went wrong on our end.",
		`<p>Try refreshing the page, or going back and attempting the action again.</p>`,
	}
)

const predefinedErrorPage = `<!DOCTYPE html>
<html>
<head>
  <meta content="width=device-width, initial-scale=1, maximum-scale=1" name="viewport">
  <title>%s</title>
  <style>
    body { color: #666; text-align: center; font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; margin: auto; font-size: 14px; }
    h1 { font-size: 56px; line-height: 100px; font-weight: 400; color: #456; }
    h3 { color: #456; font-size: 20px; font-weight: 400; line-height: 28px; }
    hr { max-width: 800px; margin: 18px auto; border: 0; border-top: 1px solid #EEE; }
  </style>
</head>
<body>
  <h1>%d</h1>
  <h3>%s</h3>
  <hr />
  %s
</body>
</html>
`

func generateErrorHTML(c content) string {
	return fmt.Sprintf(predefinedErrorPage, c.title, c.status, c.header, c.subHeader)
}

func serveErrorPage(w http.ResponseWriter, c content) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(c.status)
	fmt.Fprint(w, generateErrorHTML(c))
}

// Serve404 returns a 404 error response / HTML page to the http.ResponseWriter
func Serve404(w http.ResponseWriter) {
	serveErrorPage(w, content404)
}

// Serve414 returns a 414 error response / HTML page to the http.ResponseWriter
func Serve414(w http.ResponseWriter) {
	serveErrorPage(w, content414)
}

// Serve429 returns a 429 error response / HTML page to the http.ResponseWriter
func Serve429(w http.ResponseWriter) {
	serveErrorPage(w, content429)
}

// Serve500 returns a 500 error response / HTML page to the http.ResponseWriter
func Serve500(w http.ResponseWriter) {
	serveErrorPage(w, content500)
}

// Serve500WithRequest logs err with the request fields, reports it to error
// tracking and returns a 500 error page
func Serve500WithRequest(w http.ResponseWriter, r *http.Request, reason string, err error) {
	logging.LogRequest(r).WithError(err).Error(reason)
	errortracking.CaptureErrWithReqAndStackTrace(err, r)
	serveErrorPage(w, content500)
}
