// Package validators holds the request validators shared by every route group.
// Area packages bind a body, call Struct and store the result in c.Locals.
package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"capitalrise/ledger"
	"capitalrise/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	upiPattern    = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)

	validate = newValidate()
)

func newValidate() *validator.Validate {
	v := validator.New()

	// Report fields by their json name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	// Money fields are checked as numbers.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister := func(tag string, fn func(string) bool) {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || fn(value)
		})
		if err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	mustRegister("mobile", mobilePattern.MatchString)
	mustRegister("aadhar", ledger.ValidAadhar)
	mustRegister("pan", func(s string) bool { return ledger.ValidPan(strings.ToUpper(s)) })
	mustRegister("ifsc", func(s string) bool { return ledger.ValidIFSC(strings.ToUpper(s)) })
	mustRegister("upi", upiPattern.MatchString)
	return v
}

// Struct validates req and returns field → message, or nil when req is valid.
func Struct(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}
	errors := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		errors[fe.Field()] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "mobile":
		return "Invalid mobile number!"
	case "aadhar":
		return "Aadhar number must be 12 digits!"
	case "pan":
		return "Invalid PAN number format!"
	case "ifsc":
		return "Invalid IFSC code!"
	case "upi":
		return "Invalid UPI ID!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s!", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s!", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid value (failed on '%s')!", fe.Tag())
	}
}

// Body parses the request body into req and validates it. On failure the
// response is already written and the returned error is what the handler returns.
func Body(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errors := Struct(req); len(errors) > 0 {
		return false, middleware.ValidationErrorResponse(c, errors)
	}
	return true, nil
}

type pageQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Pagination validates the page and limit query parameters.
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(pageQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedPage", ledger.Page{Page: reqData.Page, Limit: reqData.Limit})
		return c.Next()
	}
}

// GetPage returns the page set by Pagination, or the first page.
func GetPage(c *fiber.Ctx) ledger.Page {
	p, _ := c.Locals("validatedPage").(ledger.Page)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	return p
}
