package patterns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

// knownCookies maps well-known cookie names to their category.
// Names are matched case-insensitively, exactly first and then as a prefix.
var knownCookies = map[string]model.CookieCategory{
	// Session, security and load balancing.
	"phpsessid":                  model.CookieNecessary,
	"jsessionid":                 model.CookieNecessary,
	"asp.net_sessionid":          model.CookieNecessary,
	"aspsessionid":               model.CookieNecessary,
	"cfid":                       model.CookieNecessary,
	"cftoken":                    model.CookieNecessary,
	"sessionid":                  model.CookieNecessary,
	"session":                    model.CookieNecessary,
	"sid":                        model.CookieNecessary,
	"connect.sid":                model.CookieNecessary,
	"laravel_session":            model.CookieNecessary,
	"ci_session":                 model.CookieNecessary,
	"symfony":                    model.CookieNecessary,
	"rack.session":               model.CookieNecessary,
	"_session_id":                model.CookieNecessary,
	"csrftoken":                  model.CookieNecessary,
	"csrf_token":                 model.CookieNecessary,
	"xsrf-token":                 model.CookieNecessary,
	"_csrf":                      model.CookieNecessary,
	"__requestverificationtoken": model.CookieNecessary,
	"__host-":                    model.CookieNecessary,
	"__secure-":                  model.CookieNecessary,
	"wordpress_logged_in_":       model.CookieNecessary,
	"wordpress_sec_":             model.CookieNecessary,
	"wordpress_test_cookie":      model.CookieNecessary,
	"wp-settings-":               model.CookieNecessary,
	"wp_lang":                    model.CookieNecessary,
	"woocommerce_cart_hash":      model.CookieNecessary,
	"woocommerce_items_in_cart":  model.CookieNecessary,
	"wp_woocommerce_session_":    model.CookieNecessary,
	"cart":                       model.CookieNecessary,
	"cart_sig":                   model.CookieNecessary,
	"_shopify_s":                 model.CookieAnalytics,
	"_shopify_y":                 model.CookieAnalytics,
	"_shopify_sa_p":              model.CookieMarketing,
	"_shopify_sa_t":              model.CookieMarketing,
	"secure_customer_sig":        model.CookieNecessary,
	"_secure_session_id":         model.CookieNecessary,
	"frontend":                   model.CookieNecessary,
	"form_key":                   model.CookieNecessary,
	"mage-cache-sessid":          model.CookieNecessary,
	"mage-cache-storage":         model.CookieNecessary,
	"private_content_version":    model.CookieNecessary,
	"prestashop-":                model.CookieNecessary,
	"awsalb":                     model.CookieNecessary,
	"awsalbcors":                 model.CookieNecessary,
	"awselb":                     model.CookieNecessary,
	"awselbcors":                 model.CookieNecessary,
	"bigipserver":                model.CookieNecessary,
	"ak_bmsc":                    model.CookieNecessary,
	"bm_sz":                      model.CookieNecessary,
	"bm_sv":                      model.CookieNecessary,
	"_abck":                      model.CookieNecessary,
	"__cf_bm":                    model.CookieNecessary,
	"__cfruid":                   model.CookieNecessary,
	"__cflb":                     model.CookieNecessary,
	"cf_clearance":               model.CookieNecessary,
	"_cfuvid":                    model.CookieNecessary,
	"incap_ses_":                 model.CookieNecessary,
	"visid_incap_":               model.CookieNecessary,
	"nlbi_":                      model.CookieNecessary,
	"ts01":                       model.CookieNecessary,
	"route":                      model.CookieNecessary,
	"srv_id":                     model.CookieNecessary,
	"arraffinity":                model.CookieNecessary,
	"arraffinitysamesite":        model.CookieNecessary,
	"__stripe_mid":               model.CookieNecessary,
	"__stripe_sid":               model.CookieNecessary,
	"__paypal_storage__":         model.CookieNecessary,
	"lang":                       model.CookieNecessary,
	"language":                   model.CookieNecessary,
	"locale":                     model.CookieNecessary,
	"currency":                   model.CookieNecessary,
	"timezone":                   model.CookieNecessary,
	"rc::a":                      model.CookieNecessary,
	"rc::c":                      model.CookieNecessary,
	"_grecaptcha":                model.CookieNecessary,
	"hcaptcha":                   model.CookieNecessary,

	// Consent management platforms store the consent decision itself.
	"cookieconsent_status":               model.CookieNecessary,
	"cookielawinfo-checkbox-":            model.CookieNecessary,
	"viewed_cookie_policy":               model.CookieNecessary,
	"cookieyes-consent":                  model.CookieNecessary,
	"cookiebot":                          model.CookieNecessary,
	"cookieconsent":                      model.CookieNecessary,
	"optanonconsent":                     model.CookieNecessary,
	"optanonalertboxclosed":              model.CookieNecessary,
	"eupubconsent-v2":                    model.CookieNecessary,
	"euconsent-v2":                       model.CookieNecessary,
	"euconsent":                          model.CookieNecessary,
	"didomi_token":                       model.CookieNecessary,
	"usprivacy":                          model.CookieNecessary,
	"uc_user_interaction":                model.CookieNecessary,
	"uc_settings":                        model.CookieNecessary,
	"cmplz_":                             model.CookieNecessary,
	"_iub_cs-":                           model.CookieNecessary,
	"axeptio_cookies":                    model.CookieNecessary,
	"axeptio_authorized_vendors":         model.CookieNecessary,
	"axeptio_all_vendors":                model.CookieNecessary,
	"notice_preferences":                 model.CookieNecessary,
	"notice_gdpr_prefs":                  model.CookieNecessary,
	"truste.eu.cookie.notice_gdpr_prefs": model.CookieNecessary,
	"osano_consentmanager":               model.CookieNecessary,
	"osano_consentmanager_uuid":          model.CookieNecessary,
	"borlabs-cookie":                     model.CookieNecessary,
	"moove_gdpr_popup":                   model.CookieNecessary,
	"gdpr":                               model.CookieNecessary,
	"cookie_notice_accepted":             model.CookieNecessary,
	"klaro":                              model.CookieNecessary,
	"tarteaucitron":                      model.CookieNecessary,

	// Google Analytics and other analytics suites.
	"_ga":                          model.CookieAnalytics,
	"_gid":                         model.CookieAnalytics,
	"_gat":                         model.CookieAnalytics,
	"__utma":                       model.CookieAnalytics,
	"__utmb":                       model.CookieAnalytics,
	"__utmc":                       model.CookieAnalytics,
	"__utmt":                       model.CookieAnalytics,
	"__utmz":                       model.CookieAnalytics,
	"__utmv":                       model.CookieAnalytics,
	"_dc_gtm_":                     model.CookieAnalytics,
	"amp_":                         model.CookieAnalytics,
	"_pk_id":                       model.CookieAnalytics,
	"_pk_ses":                      model.CookieAnalytics,
	"_pk_ref":                      model.CookieAnalytics,
	"_pk_cvar":                     model.CookieAnalytics,
	"_pk_hsr":                      model.CookieAnalytics,
	"mtm_consent":                  model.CookieNecessary,
	"mtm_cookie_consent":           model.CookieNecessary,
	"matomo_sessid":                model.CookieAnalytics,
	"piwik_ignore":                 model.CookieAnalytics,
	"_hjid":                        model.CookieAnalytics,
	"_hjsessionuser_":              model.CookieAnalytics,
	"_hjsession_":                  model.CookieAnalytics,
	"_hjabsolutesessioninprogress": model.CookieAnalytics,
	"_hjfirstseen":                 model.CookieAnalytics,
	"_hjincludedinsessionsample":   model.CookieAnalytics,
	"_hjincludedinpageviewsample":  model.CookieAnalytics,
	"_hjtld":                       model.CookieAnalytics,
	"_hjlocalstoragetest":          model.CookieAnalytics,
	"_hjsessionstoragetest":        model.CookieAnalytics,
	"_clck":                        model.CookieAnalytics,
	"_clsk":                        model.CookieAnalytics,
	"clid":                         model.CookieAnalytics,
	"sm":                           model.CookieAnalytics,
	"mr":                           model.CookieMarketing,
	"ajs_anonymous_id":             model.CookieAnalytics,
	"ajs_user_id":                  model.CookieAnalytics,
	"ajs_group_id":                 model.CookieAnalytics,
	"mp_":                          model.CookieAnalytics,
	"mixpanel":                     model.CookieAnalytics,
	"amplitude_id":                 model.CookieAnalytics,
	"amp_cookie_test":              model.CookieAnalytics,
	"_hp2_id.":                     model.CookieAnalytics,
	"_hp2_ses_props.":              model.CookieAnalytics,
	"_hp2_props.":                  model.CookieAnalytics,
	"s_cc":                         model.CookieAnalytics,
	"s_sq":                         model.CookieAnalytics,
	"s_vi":                         model.CookieAnalytics,
	"s_fid":                        model.CookieAnalytics,
	"s_ecid":                       model.CookieAnalytics,
	"amcv_":                        model.CookieAnalytics,
	"amcvs_":                       model.CookieAnalytics,
	"demdex":                       model.CookieMarketing,
	"dextp":                        model.CookieMarketing,
	"_fs_uid":                      model.CookieAnalytics,
	"fs_uid":                       model.CookieAnalytics,
	"fs_lua":                       model.CookieAnalytics,
	"_lo_uid":                      model.CookieAnalytics,
	"_lo_v":                        model.CookieAnalytics,
	"_lorid":                       model.CookieAnalytics,
	"_ce.s":                        model.CookieAnalytics,
	"_ce.clock_data":               model.CookieAnalytics,
	"cebs":                         model.CookieAnalytics,
	"cebsp_":                       model.CookieAnalytics,
	"_vwo_uuid":                    model.CookieAnalytics,
	"_vwo_uuid_v2":                 model.CookieAnalytics,
	"_vis_opt_":                    model.CookieAnalytics,
	"_vwo_ds":                      model.CookieAnalytics,
	"_vwo_sn":                      model.CookieAnalytics,
	"optimizelyenduserid":          model.CookieAnalytics,
	"optimizelysegments":           model.CookieAnalytics,
	"optimizelybuckets":            model.CookieAnalytics,
	"_uetsid":                      model.CookieMarketing,
	"_uetvid":                      model.CookieMarketing,
	"_uetmsclkid":                  model.CookieMarketing,
	"sc_is_visitor_unique":         model.CookieAnalytics,
	"__hstc":                       model.CookieAnalytics,
	"hubspotutk":                   model.CookieAnalytics,
	"__hssc":                       model.CookieAnalytics,
	"__hssrc":                      model.CookieAnalytics,
	"__hs_opt_out":                 model.CookieNecessary,
	"__hs_do_not_track":            model.CookieNecessary,
	"_omappvp":                     model.CookieAnalytics,
	"_omappvs":                     model.CookieAnalytics,
	"yandexuid":                    model.CookieAnalytics,
	"_ym_uid":                      model.CookieAnalytics,
	"_ym_d":                        model.CookieAnalytics,
	"_ym_isad":                     model.CookieAnalytics,
	"_ym_visorc":                   model.CookieAnalytics,
	"plausible_ignore":             model.CookieNecessary,
	"wt_fpc":                       model.CookieAnalytics,
	"wteid_":                       model.CookieAnalytics,
	"et_coid":                      model.CookieAnalytics,
	"ln_or":                        model.CookieAnalytics,
	"_gcl_au":                      model.CookieMarketing,
	"_gcl_aw":                      model.CookieMarketing,
	"_gcl_dc":                      model.CookieMarketing,
	"_gcl_gb":                      model.CookieMarketing,
	"_gac_":                        model.CookieMarketing,

	// Advertising, retargeting and social plugins.
	"ide":                         model.CookieMarketing,
	"dsid":                        model.CookieMarketing,
	"test_cookie":                 model.CookieMarketing,
	"nid":                         model.CookieMarketing,
	"1p_jar":                      model.CookieMarketing,
	"aid":                         model.CookieMarketing,
	"anid":                        model.CookieMarketing,
	"__gads":                      model.CookieMarketing,
	"__gpi":                       model.CookieMarketing,
	"__gpi_optout":                model.CookieNecessary,
	"gcl_":                        model.CookieMarketing,
	"ar_debug":                    model.CookieMarketing,
	"apisid":                      model.CookieMarketing,
	"hsid":                        model.CookieMarketing,
	"sapisid":                     model.CookieMarketing,
	"ssid":                        model.CookieMarketing,
	"__secure-3psid":              model.CookieMarketing,
	"__secure-3papisid":           model.CookieMarketing,
	"__secure-3psidcc":            model.CookieMarketing,
	"ysc":                         model.CookieMarketing,
	"visitor_info1_live":          model.CookieMarketing,
	"visitor_privacy_metadata":    model.CookieMarketing,
	"pref":                        model.CookieMarketing,
	"yt-remote-device-id":         model.CookieMarketing,
	"yt-remote-connected-devices": model.CookieMarketing,
	"_fbp":                        model.CookieMarketing,
	"_fbc":                        model.CookieMarketing,
	"fr":                          model.CookieMarketing,
	"datr":                        model.CookieMarketing,
	"sb":                          model.CookieMarketing,
	"tr":                          model.CookieMarketing,
	"_ttp":                        model.CookieMarketing,
	"_tt_enable_cookie":           model.CookieMarketing,
	"ttwid":                       model.CookieMarketing,
	"tt_webid":                    model.CookieMarketing,
	"tt_webid_v2":                 model.CookieMarketing,
	"_pin_unauth":                 model.CookieMarketing,
	"_pinterest_ct_ua":            model.CookieMarketing,
	"_pinterest_sess":             model.CookieMarketing,
	"_routing_id":                 model.CookieMarketing,
	"_epik":                       model.CookieMarketing,
	"bcookie":                     model.CookieMarketing,
	"bscookie":                    model.CookieMarketing,
	"lidc":                        model.CookieMarketing,
	"li_gc":                       model.CookieNecessary,
	"li_sugr":                     model.CookieMarketing,
	"lang_li":                     model.CookieNecessary,
	"ugid":                        model.CookieMarketing,
	"analyticssynchistory":        model.CookieMarketing,
	"usermatchhistory":            model.CookieMarketing,
	"li_fat_id":                   model.CookieMarketing,
	"personalization_id":          model.CookieMarketing,
	"guest_id":                    model.CookieMarketing,
	"guest_id_ads":                model.CookieMarketing,
	"guest_id_marketing":          model.CookieMarketing,
	"muc_ads":                     model.CookieMarketing,
	"_twitter_sess":               model.CookieMarketing,
	"muid":                        model.CookieMarketing,
	"anonchk":                     model.CookieMarketing,
	"_scid":                       model.CookieMarketing,
	"_sctr":                       model.CookieMarketing,
	"sc_at":                       model.CookieMarketing,
	"_rdt_uuid":                   model.CookieMarketing,
	"_rdt_cid":                    model.CookieMarketing,
	"criteo":                      model.CookieMarketing,
	"cto_bundle":                  model.CookieMarketing,
	"cto_bidid":                   model.CookieMarketing,
	"cto_tld_test":                model.CookieMarketing,
	"uid":                         model.CookieMarketing,
	"uuid2":                       model.CookieMarketing,
	"anj":                         model.CookieMarketing,
	"icu":                         model.CookieMarketing,
	"tuuid":                       model.CookieMarketing,
	"tuuid_lu":                    model.CookieMarketing,
	"c":                           model.CookieMarketing,
	"tluid":                       model.CookieMarketing,
	"taboola_usg":                 model.CookieMarketing,
	"t_gid":                       model.CookieMarketing,
	"t_pt_gid":                    model.CookieMarketing,
	"obuid":                       model.CookieMarketing,
	"outbrain_cid_fetch":          model.CookieMarketing,
	"adnxs":                       model.CookieMarketing,
	"khaos":                       model.CookieMarketing,
	"rpb":                         model.CookieMarketing,
	"rpx":                         model.CookieMarketing,
	"audit":                       model.CookieMarketing,
	"pubmatic":                    model.CookieMarketing,
	"kadusercookie":               model.CookieMarketing,
	"kaduserlastsynctime":         model.CookieMarketing,
	"pxrc":                        model.CookieMarketing,
	"rlas3":                       model.CookieMarketing,
	"idsync":                      model.CookieMarketing,
	"bito":                        model.CookieMarketing,
	"bitoisecure":                 model.CookieMarketing,
	"checkforpermission":          model.CookieMarketing,
	"tapad_tapestry":              model.CookieMarketing,
	"tapad_ts":                    model.CookieMarketing,
	"tapad_did":                   model.CookieMarketing,
	"sync_tapad":                  model.CookieMarketing,
	"_kuid_":                      model.CookieMarketing,
	"mc":                          model.CookieMarketing,
	"d":                           model.CookieMarketing,
	"ab":                          model.CookieMarketing,
	"a3":                          model.CookieMarketing,
	"b":                           model.CookieMarketing,
	"bkdc":                        model.CookieMarketing,
	"bku":                         model.CookieMarketing,
	"_cc_id":                      model.CookieMarketing,
	"_cc_dc":                      model.CookieMarketing,
	"_cc_aud":                     model.CookieMarketing,
	"panoramaid":                  model.CookieMarketing,
	"panoramaid_env":              model.CookieMarketing,
	"_li_dcdm_c":                  model.CookieMarketing,
	"_lc2_fpi":                    model.CookieMarketing,
	"ljt_reader":                  model.CookieMarketing,
	"_hjclosedsurveyinvites":      model.CookieAnalytics,
	"__kla_id":                    model.CookieMarketing,
	"_kla_test":                   model.CookieMarketing,
	"__adroll":                    model.CookieMarketing,
	"__adroll_fpc":                model.CookieMarketing,
	"__ar_v4":                     model.CookieMarketing,
	"_gd_visitor":                 model.CookieMarketing,
	"_gd_session":                 model.CookieMarketing,
	"intercom-id-":                model.CookieAnalytics,
	"intercom-session-":           model.CookieAnalytics,
	"intercom-device-id-":         model.CookieAnalytics,
	"drift_aid":                   model.CookieAnalytics,
	"drift_campaign_refresh":      model.CookieAnalytics,
	"driftt_aid":                  model.CookieAnalytics,
	"__zlcmid":                    model.CookieAnalytics,
	"__tawkuuid":                  model.CookieAnalytics,
	"tawkconnectiontime":          model.CookieAnalytics,
	"crisp-client/":               model.CookieAnalytics,
	"_calendly_session":           model.CookieNecessary,
	"vuid":                        model.CookieAnalytics,
	"player":                      model.CookieAnalytics,
	"_zitok":                      model.CookieNecessary,
	"__qca":                       model.CookieMarketing,
	"mc_":                         model.CookieMarketing,
	"_mkto_trk":                   model.CookieMarketing,
	"_an_uid":                     model.CookieMarketing,
	"_opt_awcid":                  model.CookieMarketing,
	"_opt_awmid":                  model.CookieMarketing,
	"_opt_awgid":                  model.CookieMarketing,
	"_opt_awkid":                  model.CookieMarketing,
	"_opt_utmc":                   model.CookieMarketing,
}

// cookieVendors labels cookie name prefixes with the vendor that sets them.
// Used for evidence and reports.
var cookieVendors = []struct {
	prefix string
	vendor string
	exact  bool
}{
	{"_ga", "Google Analytics", false},
	{"_gid", "Google Analytics", false},
	{"_gat", "Google Analytics", false},
	{"__utm", "Google Analytics (legacy)", false},
	{"_gcl_", "Google Ads", false},
	{"_gac_", "Google Ads", false},
	{"ide", "Google DoubleClick", true},
	{"dsid", "Google DoubleClick", true},
	{"__gads", "Google AdSense", false},
	{"__gpi", "Google AdSense", false},
	{"_fbp", "Meta Pixel", false},
	{"_fbc", "Meta Pixel", false},
	{"fr", "Meta", true},
	{"datr", "Meta", true},
	{"_hj", "Hotjar", false},
	{"_clck", "Microsoft Clarity", false},
	{"_clsk", "Microsoft Clarity", false},
	{"_uet", "Microsoft Advertising", false},
	{"muid", "Microsoft Advertising", true},
	{"_pk_", "Matomo", false},
	{"_ttp", "TikTok Pixel", false},
	{"_pin", "Pinterest", false},
	{"bcookie", "LinkedIn", true},
	{"bscookie", "LinkedIn", true},
	{"lidc", "LinkedIn", true},
	{"li_", "LinkedIn", false},
	{"personalization_id", "X (Twitter)", true},
	{"guest_id", "X (Twitter)", false},
	{"_scid", "Snapchat", false},
	{"_rdt_", "Reddit", false},
	{"cto_", "Criteo", false},
	{"__hs", "HubSpot", false},
	{"hubspotutk", "HubSpot", true},
	{"ajs_", "Segment", false},
	{"mp_", "Mixpanel", false},
	{"amp_", "Amplitude", false},
	{"_hp2_", "Heap", false},
	{"_ym_", "Yandex Metrica", false},
	{"amcv_", "Adobe Experience Cloud", false},
	{"s_cc", "Adobe Analytics", true},
	{"s_sq", "Adobe Analytics", true},
	{"s_vi", "Adobe Analytics", true},
	{"s_ecid", "Adobe Analytics", true},
	{"_vwo", "VWO", false},
	{"optimizely", "Optimizely", false},
	{"intercom-", "Intercom", false},
	{"__kla_id", "Klaviyo", false},
	{"__adroll", "AdRoll", false},
	{"_mkto_trk", "Marketo", false},
	{"__qca", "Quantcast", false},
	{"t_gid", "Taboola", true},
	{"obuid", "Outbrain", true},
}

// cookieRule is a regex fallback rule.
type cookieRule struct {
	pattern  *regexp.Regexp
	category model.CookieCategory
}

// cookieRuleGroups are tried in order: analytics, marketing, necessary.
// The first matching rule wins.
var cookieRuleGroups = [][]cookieRule{
	{
		{regexp.MustCompile(`(?i)^_ga_[a-z0-9]+$`), model.CookieAnalytics},
		{regexp.MustCompile(`(?i)analytic`), model.CookieAnalytics},
		{regexp.MustCompile(`(?i)(^|[_-])stat(s|istic)?([_-]|$)`), model.CookieAnalytics},
		{regexp.MustCompile(`(?i)(^|[_-])(visitor|visit)(_?id)?([_-]|$)`), model.CookieAnalytics},
		{regexp.MustCompile(`(?i)heatmap|hotjar|clarity|matomo|piwik|mixpanel|amplitude|segment`), model.CookieAnalytics},
		{regexp.MustCompile(`(?i)(^|[_-])(utm|pageview|tracking|track)([_-]|$)`), model.CookieAnalytics},
	},
	{
		{regexp.MustCompile(`(?i)(^|[_-])(ad|ads|adv|advert|advertising)([_-]|$)`), model.CookieMarketing},
		{regexp.MustCompile(`(?i)marketing|campaign|retarget|remarket`), model.CookieMarketing},
		{regexp.MustCompile(`(?i)pixel|(^|[_-])fb|facebook|doubleclick|criteo|taboola|outbrain`), model.CookieMarketing},
		{regexp.MustCompile(`(?i)(^|[_-])(affiliate|aff|partner|referral)(_?id)?([_-]|$)`), model.CookieMarketing},
	},
	{
		{regexp.MustCompile(`(?i)sess(ion)?(_?id)?`), model.CookieNecessary},
		{regexp.MustCompile(`(?i)csrf|xsrf|(^|[_-])token([_-]|$)`), model.CookieNecessary},
		{regexp.MustCompile(`(?i)consent|gdpr|cookie_?(notice|policy|banner|law)`), model.CookieNecessary},
		{regexp.MustCompile(`(?i)(^|[_-])(auth|login|logged_?in)([_-]|$)`), model.CookieNecessary},
		{regexp.MustCompile(`(?i)(^|[_-])(lb|balancer|affinity|route|sticky)([_-]|$)`), model.CookieNecessary},
		{regexp.MustCompile(`(?i)(^|[_-])(lang|language|locale|currency|cart|basket)([_-]|$)`), model.CookieNecessary},
	},
}

// sortedCookiePrefixes holds the table keys sorted longest first so that
// the most specific prefix wins.
var sortedCookiePrefixes = func() []string {
	keys := make([]string, 0, len(knownCookies))
	for k := range knownCookies {
		keys = append(keys, strings.ToLower(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// lowerCookies is knownCookies keyed by lower-case name.
var lowerCookies = func() map[string]model.CookieCategory {
	m := make(map[string]model.CookieCategory, len(knownCookies))
	for k, v := range knownCookies {
		m[strings.ToLower(k)] = v
	}
	return m
}()

// isNameBoundary reports whether a table prefix ends at a boundary of the
// cookie name. The prefix either ends with a separator itself or is followed
// by one, so "_ga" matches "_ga_ABC123" but "ide" does not match "identity".
func isNameBoundary(name, prefix string) bool {
	if len(name) == len(prefix) {
		return true
	}
	if strings.ContainsRune(nameSeparators, rune(prefix[len(prefix)-1])) {
		return true
	}
	return strings.ContainsRune(nameSeparators, rune(name[len(prefix)]))
}

const nameSeparators = "_-.:~/|"

// ClassifyCookie returns the category of a cookie by name.
//
// The lookup has three tiers, tried in order:
//  1. exact match against the known cookie table
//  2. prefix match against the same table (e.g. "_ga_ABC123" matches "_ga"),
//     longest prefix first
//  3. regex rule groups: analytics, then marketing, then necessary
//
// Names matching nothing are CookieUnknown.
func ClassifyCookie(name string) model.CookieCategory {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return model.CookieUnknown
	}

	if category, ok := lowerCookies[lower]; ok {
		return category
	}

	for _, prefix := range sortedCookiePrefixes {
		if strings.HasPrefix(lower, prefix) && isNameBoundary(lower, prefix) {
			return lowerCookies[prefix]
		}
	}

	for _, group := range cookieRuleGroups {
		for _, rule := range group {
			if rule.pattern.MatchString(lower) {
				return rule.category
			}
		}
	}

	return model.CookieUnknown
}

// CookieVendor returns the vendor known to set the cookie, or "".
func CookieVendor(name string) string {
	lower := strings.ToLower(name)
	for _, v := range cookieVendors {
		if lower == v.prefix || (!v.exact && strings.HasPrefix(lower, v.prefix)) {
			return v.vendor
		}
	}
	return ""
}

// KnownCookieCount returns the number of entries in the cookie table.
func KnownCookieCount() int {
	return len(lowerCookies)
}
