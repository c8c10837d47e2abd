package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oogunniyi/portfolio/internal/contact"
)

const invalidFormNotice = "Please fill in your name, a valid email and a message."

// handleContact answers with the contact form fragment. On success the
// fields come back empty; otherwise they keep what the visitor typed.
// Input the browser let through but binding rejects gets a 422, which
// site.js swaps in so the notice is shown.
func (s *Server) handleContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusUnprocessableEntity, "contact-form.html", contactView{
			Form:   form,
			Notice: invalidFormNotice,
			Failed: true,
		})
		return
	}

	out := <-s.submitter.SubmitAsync(c.Request.Context(), form)
	c.HTML(http.StatusOK, "contact-form.html", contactView{
		Form:   out.Form,
		Notice: out.Notice,
		Sent:   out.Sent,
		Failed: !out.Sent,
	})
}
