package apperrors

// Ledger failures.
var (
	ErrUserNotFound            = New(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrSponsorNotFound         = New(KindNotFound, "SPONSOR_NOT_FOUND", "Invalid sponsor ID")
	ErrInvalidPackage          = New(KindNotFound, "INVALID_PACKAGE", "Invalid package selected")
	ErrNoActivePackage         = New(KindNotFound, "NO_ACTIVE_PACKAGE", "No active package. Please activate a package first.")
	ErrPackageExpired          = New(KindNotFound, "PACKAGE_EXPIRED", "Your package has expired. Please activate a new package.")
	ErrRequestNotFound         = New(KindNotFound, "REQUEST_NOT_FOUND", "Request not found")
	ErrKYCNotFound             = New(KindNotFound, "KYC_NOT_FOUND", "KYC request not found")
	ErrAdminNotFound           = New(KindNotFound, "ADMIN_NOT_FOUND", "Admin not found")
	ErrInsufficientBalance     = New(KindInsufficientFunds, "INSUFFICIENT_BALANCE", "Insufficient balance")
	ErrPackageAlreadyActive    = New(KindConflict, "PACKAGE_ALREADY_ACTIVE", "You already have an active package")
	ErrQuotaReached            = New(KindConflict, "QUOTA_REACHED", "All clicks completed for today")
	ErrRequestAlreadyProcessed = New(KindConflict, "REQUEST_ALREADY_PROCESSED", "Request already processed")
	ErrKYCAlreadySubmitted     = New(KindConflict, "KYC_ALREADY_SUBMITTED", "KYC already submitted")
	ErrEmailTaken              = New(KindConflict, "EMAIL_TAKEN", "Email already registered")
	ErrDuplicateReference      = New(KindConflict, "DUPLICATE_REFERENCE", "This UPI transaction ID has already been submitted")
	ErrDuplicateOperation      = New(KindConflict, "DUPLICATE_OPERATION", "Operation already applied")
	ErrKYCNotApproved          = New(KindValidation, "KYC_NOT_APPROVED", "Please complete KYC verification before withdrawal")
	ErrInvalidCredentials      = New(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrAccountBlocked          = New(KindUnauthorized, "ACCOUNT_BLOCKED", "Your account has been blocked. Please contact support.")
	ErrForbidden               = New(KindForbidden, "FORBIDDEN", "You do not have permission to perform this action")
)
