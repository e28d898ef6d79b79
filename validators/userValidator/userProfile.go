package userValidator

import (
	"mime/multipart"
	"strings"
	"time"

	"capitalrise/middleware"
	"capitalrise/models"
	"capitalrise/utils"
	"capitalrise/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type UpdateProfileRequest struct {
	Name   string `json:"name" validate:"omitempty,min=3,max=100"`
	Mobile string `json:"mobile" validate:"omitempty,mobile"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		if strings.TrimSpace(reqData.Name) == "" && reqData.Mobile == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"name": "Name or mobile is required!"})
		}
		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

type ActivatePackageRequest struct {
	PackageName string          `json:"packageName" validate:"required,max=50"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
}

func ActivatePackage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ActivatePackageRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedActivation", reqData)
		return c.Next()
	}
}

// KYCRequest is the multipart KYC form. Document images are optional.
type KYCRequest struct {
	Name         string `form:"name" validate:"omitempty,min=3,max=100"`
	DOB          string `form:"dob" validate:"required,datetime=2006-01-02"`
	AadharNumber string `form:"aadharNumber" validate:"required,aadhar"`
	PanNumber    string `form:"panNumber" validate:"required,pan"`
	BankAccount  string `form:"bankAccount" validate:"required,numeric,min=9,max=18"`
	IFSCCode     string `form:"ifscCode" validate:"omitempty,ifsc"`

	BirthDate time.Time                        `form:"-"`
	Documents map[string]*multipart.FileHeader `form:"-"`
}

// KYCDocumentFields are the optional file fields of the KYC form.
var KYCDocumentFields = []string{"aadharFront", "aadharBack", "panCard"}

func SubmitKYC() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(KYCRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.BirthDate, _ = time.Parse("2006-01-02", reqData.DOB)
		if !reqData.BirthDate.Before(time.Now().AddDate(-18, 0, 0)) {
			return middleware.ValidationErrorResponse(c, map[string]string{"dob": "You must be at least 18 years old!"})
		}

		errors := make(map[string]string)
		reqData.Documents = make(map[string]*multipart.FileHeader)
		for _, field := range KYCDocumentFields {
			file, err := c.FormFile(field)
			if err != nil {
				continue
			}
			if err := utils.CheckUpload(file); err != nil {
				errors[field] = err.Error()
				continue
			}
			reqData.Documents[field] = file
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedKYC", reqData)
		return c.Next()
	}
}

type TransactionListQuery struct {
	Type string `query:"type" validate:"omitempty,max=50"`
}

func TransactionList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TransactionListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if reqData.Type != "" && !models.ValidTransactionType(models.TransactionType(reqData.Type)) {
			return middleware.ValidationErrorResponse(c, map[string]string{"type": "Unknown transaction type!"})
		}
		c.Locals("validatedTransactionList", reqData)
		return c.Next()
	}
}
