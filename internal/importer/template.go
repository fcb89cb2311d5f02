package importer

// TemplateFilename is the suggested name for the downloadable template.
const TemplateFilename = "expense_template.csv"

const template = "Date,Description,Amount,Category\n" +
	"2024-01-15,Grocery Shopping,85.47,Groceries\n" +
	"2024-01-16,Gas Station,45.00,Transportation\n"

// Template returns the example import document.
func Template() string {
	return template
}
