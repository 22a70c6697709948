package detect

import "geopuzzle/internal/patterns"

// Per-detector format tables. Text is upper-cased before matching.

var romanFormats = []patterns.Format{
	// Example: NORD XLVIII XXXII CCXCVI EST VI XL DCXXXVI
	{
		Name: "nord_est_roman",
		Pattern: `{NORD}\s+(?P<lat_deg>{ROMAN})\s+(?P<lat_min>{ROMAN})\s+(?P<lat_dec>{ROMAN})\s+` +
			`{EST}\s+(?P<lon_deg>{ROMAN})\s+(?P<lon_min>{ROMAN})\s+(?P<lon_dec>{ROMAN})\b`,
		Fields: []string{"lat_deg", "lat_min", "lat_dec", "lon_deg", "lon_min", "lon_dec"},
	},
}

var dmsFormats = []patterns.Format{
	// Example: N 48° 33' 47.2" E 006° 38' 48.2"
	{
		Name: "dms",
		Pattern: `(?P<lat_dir>{LAT_DIR})\s*(?P<lat_deg>{LAT_DEG})\s*{DEG_SIGN}\s*(?P<lat_min>{MIN})\s*{MIN_MARK}\s*` +
			`(?P<lat_sec>{SEC})\s*(?:{SEC_MARK})[\s,;/]*` +
			`(?P<lon_dir>{LON_DIR})\s*(?P<lon_deg>{LON_DEG})\s*{DEG_SIGN}\s*(?P<lon_min>{MIN})\s*{MIN_MARK}\s*` +
			`(?P<lon_sec>{SEC})\s*(?:{SEC_MARK})`,
		Fields: []string{"lat_dir", "lat_deg", "lat_min", "lat_sec", "lon_dir", "lon_deg", "lon_min", "lon_sec"},
	},
}

var nordEstLooseFormats = []patterns.Format{
	// Example: NORD 48.33,787 - EST 6/38/803
	{
		Name: "nord_est_loose",
		Pattern: `{NORD}\D*?(?P<lat_deg>\d{1,2})\D+(?P<lat_min>\d{1,2})\D+(?P<lat_dec>\d{1,3})\D+?` +
			`{EST}\D*?(?P<lon_deg>\d{1,3})\D+(?P<lon_min>\d{1,2})\D+(?P<lon_dec>\d{1,3})(?:\D|$)`,
		Fields: []string{"lat_deg", "lat_min", "lat_dec", "lon_deg", "lon_min", "lon_dec"},
	},
}

var nordEstSpacedFormats = []patterns.Format{
	// Example: NORD 48 33 787 EST 006 38 803
	{
		Name: "nord_est_spaced",
		Pattern: `{NORD}\s+(?P<lat_deg>\d{2})\s+(?P<lat_min>\d{2})\s+(?P<lat_dec>\d{3})\s+` +
			`{EST}\s+(?P<lon_deg>\d{2,3})\s+(?P<lon_min>\d{2})\s+(?P<lon_dec>\d{3})\b`,
		Fields: []string{"lat_deg", "lat_min", "lat_dec", "lon_deg", "lon_min", "lon_dec"},
	},
}

var flexibleFormats = []patterns.Format{
	// Examples:
	//   N 48° 33.787' E 006° 38.803'
	//   n48 deg 33.787 e6 degrees 38.803
	//   N 48 DEG 33 MIN 47 SEC E 6 DEG 38 MIN 48 SEC
	{
		Name: "flexible",
		Pattern: `\b(?P<lat_dir>{LAT_DIR})\s*(?P<lat_deg>{LAT_DEG})\s*{DEG_WORD}\s*` +
			`(?P<lat_min>{MIN}(?:{DECSEP}\d+)?)\s*(?:{MIN_MARK}|MINUTES?|MIN)?\s*` +
			`(?:(?P<lat_sec>{SEC})\s*(?:{SEC_MARK}|SECONDS?|SEC))?[\s,;/]*` +
			`(?P<lon_dir>{LON_DIR})\s*(?P<lon_deg>{LON_DEG})\s*{DEG_WORD}\s*` +
			`(?P<lon_min>{MIN}(?:{DECSEP}\d+)?)\s*(?:{MIN_MARK}|MINUTES?|MIN)?\s*` +
			`(?:(?P<lon_sec>{SEC})\s*(?:{SEC_MARK}|SECONDS?|SEC))?`,
		Fields: []string{"lat_dir", "lat_deg", "lat_min", "lat_sec", "lon_dir", "lon_deg", "lon_min", "lon_sec"},
	},
}

var tabSpecificFormats = []patterns.Format{
	// Example: N\t48\t33.787\tE\t6\t38.803
	{
		Name: "tab_specific",
		Pattern: `\bN{HS}+(?P<lat_deg>{LAT_DEG}){HS}+(?P<lat_min>{MIN}){DECSEP}(?P<lat_dec>{DEC}){HS}+` +
			`E{HS}+(?P<lon_deg>{LON_DEG}){HS}+(?P<lon_min>{MIN}){DECSEP}(?P<lon_dec>{DEC})\b`,
		Fields: []string{"lat_deg", "lat_min", "lat_dec", "lon_deg", "lon_min", "lon_dec"},
	},
}

var standardFormats = []patterns.Format{
	// Example: N 48 ° 33 . 787 ' E 006 ° 38 . 803 '
	{
		Name: "standard",
		Pattern: `\b(?P<lat_dir>{LAT_DIR})\s*(?P<lat_deg>{LAT_DEG})\s*{DEG_SIGN}\s*(?P<lat_min>{MIN})\s*\.\s*(?P<lat_dec>{DEC})\s*{MIN_MARK}?\s*` +
			`(?P<lon_dir>{LON_DIR})\s*(?P<lon_deg>{LON_DEG})\s*{DEG_SIGN}\s*(?P<lon_min>{MIN})\s*\.\s*(?P<lon_dec>{DEC})`,
		Fields: []string{"lat_dir", "lat_deg", "lat_min", "lat_dec", "lon_dir", "lon_deg", "lon_min", "lon_dec"},
	},
}

var tabDMMFormats = []patterns.Format{
	// Examples: N48 33,787 E006 38,803 / S 33\t52.123\tW 151\t12.5
	{
		Name: "tab_dmm",
		Pattern: `\b(?P<lat_dir>{LAT_DIR}){HS}*(?P<lat_deg>{LAT_DEG})(?:{HS}*{DEG_SIGN}{HS}*|{HS}+)` +
			`(?P<lat_min>{MIN}){DECSEP}(?P<lat_dec>{DEC}){MIN_MARK}?[\t ,;]*` +
			`(?P<lon_dir>{LON_DIR}){HS}*(?P<lon_deg>{LON_DEG})(?:{HS}*{DEG_SIGN}{HS}*|{HS}+)` +
			`(?P<lon_min>{MIN}){DECSEP}(?P<lon_dec>{DEC})`,
		Fields: []string{"lat_dir", "lat_deg", "lat_min", "lat_dec", "lon_dir", "lon_deg", "lon_min", "lon_dec"},
	},
}

var fixedBlockFormats = []patterns.Format{
	// Example: NORD 4833787 EST 00638803
	{
		Name:    "fixed_block",
		Pattern: `{NORD}\s*(?P<lat>{LAT_BLOCK})\b\D*?{EST}\s*(?P<lon>{LON_BLOCK})\b`,
		Fields:  []string{"lat", "lon"},
	},
}
