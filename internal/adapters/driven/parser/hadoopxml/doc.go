// Package hadoopxml parses Hadoop-style XML descriptor files (*.hxr) into
// provider configs and topology descriptors.
//
// A file is a <configuration> of <property> elements. A property named
// "providerConfigs:<name>[,<name>...]" declares shared provider configs;
// every other property declares a descriptor named after the property.
// Property values are '#'-separated entries:
//
//	role=authentication#authentication.name=ShiroProvider#authentication.param.sessionTimeout=30
//	discoveryType=ClouderaManager#providerConfigRef=sso#HIVE:url=http://hive:10001#app:knoxauth
//
// Whitespace around entries is ignored, so long values may be wrapped
// across lines.
package hadoopxml
