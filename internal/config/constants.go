package config

import "time"

// Timer durations.
const (
	StaleCheckInterval = 60 * time.Second
	StaleAfterDays     = 1
	DefaultDBTimeout   = 5 * time.Second
)

// Paging.
const (
	ItemsPerPage = 10
)

// Database/application settings.
const (
	AppName             = "problemtracker"
	SnapshotKey         = "problemTrackerDB"
	LocalStorageFile    = "localstorage.db"
	LogFileName         = "problemtracker.log"
	ConfigFileName      = "config.yaml"
	DefaultQuotaBytes   = 5 * 1024 * 1024
	ProblemNumberPrefix = "P-"
	ProblemNumberDigits = 4
)

// Export file naming.
const (
	CSVReportPrefix    = "problems_report_"
	PDFReportPrefix    = "problems_report_"
	BackupPrefix       = "problemtracker_backup_"
	BackupMIME         = "application/x-sqlite3"
	EncryptedBackupExt = ".enc"
	ExportDateLayout   = "2006-01-02"
	LocaleDateLayout   = "1/2/2006"
)

// Messaging.
const (
	DefaultLinkBase    = "https://wa.me/"
	CountryCode        = "966"
	DefaultNotifyText  = "اهلاً {reporter} \n تم استلام المشكلة التالية وجاري العمل على حلها: \"{description}\" \n شكراً لتعاونك"
	MinPassphraseChars = 8
)

// CSVHeader is the fixed column layout shared by export and import.
var CSVHeader = []string{
	"رقم المشكلة",
	"الجهة",
	"المشكلة",
	"تاريخ الإضافة",
	"تاريخ الإكمال",
	"أيام الحل",
	"المبلّغ",
	"الهاتف",
	"الحالة",
}
