package handlers

import "github.com/gofiber/fiber/v2"

// reply writes the {message, data} envelope every JSON endpoint uses.
func reply(c *fiber.Ctx, status int, msg string, data any) error {
	body := fiber.Map{"message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(ctxUserID).(string)
	return id
}
