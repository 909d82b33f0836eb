package store

// Schema DDL, applied on Open. Every statement is idempotent.
const (
	createListedEquities = `CREATE TABLE IF NOT EXISTS ListedEquities (
    Symbol CHAR(10),
    CompanyName CHAR(255)
);`

	createEquities = `CREATE TABLE IF NOT EXISTS Equities (
    Symbol CHAR(10),
    CompanyName CHAR(255),
    "1D" FLOAT(5),
    "1W" FLOAT(5),
    "1M" FLOAT(5),
    "3M" FLOAT(5),
    "1Y" FLOAT(5),
    "5Y" FLOAT(5),
    "10Y" FLOAT(5),
    Max FLOAT(5),
    LastUpdated DATETIME DEFAULT CURRENT_TIMESTAMP
);`

	createOptions = `CREATE TABLE IF NOT EXISTS Options (
    CompanySymbol CHAR(10),
    Type CHAR(4),
    Description CHAR(255),
    Symbol CHAR(255),
    BlackScholesValue FLOAT(10),
    ExternalModelValue FLOAT(10),
    Premium FLOAT(10),
    ContractRating FLOAT(20),
    LastUpdated DATETIME DEFAULT CURRENT_TIMESTAMP
);`

	// LastUpdated is server assigned: refreshed whenever a row is updated.
	createEquitiesTrigger = `CREATE TRIGGER IF NOT EXISTS Update_Equities_LastUpdated
    AFTER UPDATE ON Equities
    FOR EACH ROW
    BEGIN
        UPDATE Equities SET LastUpdated = CURRENT_TIMESTAMP WHERE Symbol = old.Symbol;
    END;`

	createOptionsTrigger = `CREATE TRIGGER IF NOT EXISTS Update_Options_LastUpdated
    AFTER UPDATE ON Options
    FOR EACH ROW
    BEGIN
        UPDATE Options SET LastUpdated = CURRENT_TIMESTAMP WHERE Symbol = old.Symbol;
    END;`
)

var schema = []string{
	createListedEquities,
	createEquities,
	createOptions,
	createEquitiesTrigger,
	createOptionsTrigger,
}
